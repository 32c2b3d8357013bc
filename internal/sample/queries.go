package sample

import (
	"context"
	"strings"

	"github.com/kbukum/lazyq/pipeline"
	"github.com/kbukum/lazyq/validation"
)

type cityCode struct {
	city string
	code int
}

func upperLocation(u User) string { return strings.ToUpper(u.locationID) }

// UsersByFirstName keeps users whose ID is at least minID, ordered by first name.
func UsersByFirstName(users *pipeline.Pipeline[User], minID int) (*pipeline.Pipeline[User], error) {
	if err := validation.New().Min("min_id", minID, 0).Err(); err != nil {
		return nil, err
	}
	kept := pipeline.Where(users, func(u User) bool { return u.id >= minID })
	return pipeline.OrderBy(kept, pipeline.Key(User.FirstName)).Pipeline, nil
}

// CitiesDescending projects locations to country and city, ordered by city
// descending and then by country.
func CitiesDescending(locations *pipeline.Pipeline[Location]) *pipeline.Pipeline[CountryCity] {
	projected := pipeline.Map(locations, func(_ context.Context, l Location) (CountryCity, error) {
		return CountryCity{Country: l.country, City: l.city}, nil
	})
	ordered := pipeline.OrderByDescending(projected, pipeline.Key(func(c CountryCity) string { return c.City }))
	return pipeline.ThenBy(ordered, pipeline.Key(func(c CountryCity) string { return c.Country })).Pipeline
}

// UsersWithLocation joins every user with the locations whose city matches
// the user's location, ordered by first name descending and then by city.
// Users without a matching location are dropped.
func UsersWithLocation(users *pipeline.Pipeline[User], locations *pipeline.Pipeline[Location]) *pipeline.Pipeline[UserLocation] {
	joined := pipeline.Join(users, locations,
		pipeline.Key(User.LocationID), pipeline.Key(Location.City), projectUserLocation)
	return orderUserLocations(joined)
}

// UsersWithLocationAndCountry is UsersWithLocation matching on city and
// country code together, so same-named cities in other countries are ignored.
func UsersWithLocationAndCountry(users *pipeline.Pipeline[User], locations *pipeline.Pipeline[Location]) *pipeline.Pipeline[UserLocation] {
	joined := pipeline.Join(users, locations,
		pipeline.Key(func(u User) cityCode { return cityCode{u.locationID, u.countryCode} }),
		pipeline.Key(func(l Location) cityCode { return cityCode{l.city, l.countryCode} }),
		projectUserLocation)
	return orderUserLocations(joined)
}

func projectUserLocation(u User, l Location) (UserLocation, error) {
	return UserLocation{UserName: u.userName, FirstName: u.firstName, Country: l.country, City: l.city}, nil
}

func orderUserLocations(p *pipeline.Pipeline[UserLocation]) *pipeline.Pipeline[UserLocation] {
	ordered := pipeline.OrderByDescending(p, pipeline.Key(func(ul UserLocation) string { return ul.FirstName }))
	return pipeline.ThenBy(ordered, pipeline.Key(func(ul UserLocation) string { return ul.City })).Pipeline
}

// LocationsByCity groups locations by upper-cased city name, ordered by key.
func LocationsByCity(locations *pipeline.Pipeline[Location]) *pipeline.Pipeline[pipeline.Grouping[string, Location]] {
	groups := pipeline.GroupBy(locations, pipeline.Key(func(l Location) string { return strings.ToUpper(l.city) }))
	return pipeline.OrderBy(groups, pipeline.Key(func(g pipeline.Grouping[string, Location]) string { return g.Key })).Pipeline
}

// UsersPerLocation pairs each location with the users living in its city,
// ordered by city. Locations without users are kept with an empty list.
func UsersPerLocation(locations *pipeline.Pipeline[Location], users *pipeline.Pipeline[User]) *pipeline.Pipeline[LocationUsers] {
	joined := pipeline.GroupJoin(locations, users,
		pipeline.Key(Location.City), pipeline.Key(User.LocationID),
		func(l Location, g pipeline.Grouping[string, User]) (LocationUsers, error) {
			return LocationUsers{Location: l, Users: g.Items()}, nil
		})
	return pipeline.OrderBy(joined, pipeline.Key(func(lu LocationUsers) string { return lu.Location.city })).Pipeline
}

// TopUsersPerCountry groups UsersPerLocation by country and keeps the top
// users of each country by user name descending.
func TopUsersPerCountry(locations *pipeline.Pipeline[Location], users *pipeline.Pipeline[User], top int) (*pipeline.Pipeline[CountryUsers], error) {
	if err := validation.New().Min("top", top, 1).Err(); err != nil {
		return nil, err
	}
	byCountry := pipeline.GroupBy(UsersPerLocation(locations, users),
		pipeline.Key(func(lu LocationUsers) string { return lu.Location.country }))
	return pipeline.Map(byCountry, func(ctx context.Context, g pipeline.Grouping[string, LocationUsers]) (CountryUsers, error) {
		members := pipeline.FlatMap(g.Pipeline(), func(_ context.Context, lu LocationUsers) (*pipeline.Pipeline[User], error) {
			return pipeline.FromSlice(lu.Users), nil
		})
		ranked := pipeline.OrderByDescending(members, pipeline.Key(User.UserName))
		picked, err := pipeline.Collect(ctx, pipeline.Take(ranked.Pipeline, top))
		if err != nil {
			return CountryUsers{}, err
		}
		return CountryUsers{Country: g.Key, Users: picked}, nil
	}), nil
}

// MathStatsByLocation groups users by upper-cased location and summarizes
// each group's math grades in a single pass, ordered by the highest grade.
func MathStatsByLocation(users *pipeline.Pipeline[User]) *pipeline.Pipeline[LocationStats] {
	groups := pipeline.GroupBy(users, pipeline.Key(upperLocation))
	stats := pipeline.Map(groups, func(ctx context.Context, g pipeline.Grouping[string, User]) (LocationStats, error) {
		s, err := pipeline.Summarize(ctx, g.Pipeline(), pipeline.IntStats(), User.Math)
		if err != nil {
			return LocationStats{}, err
		}
		return LocationStats{City: g.Key, Max: s.Max, Min: s.Min, Mean: s.Mean, Count: s.Count}, nil
	})
	return pipeline.OrderBy(stats, pipeline.Key(func(s LocationStats) int { return s.Max })).Pipeline
}

// MoviesAfter keeps movies released after year, reading the year through
// yearOf so callers can observe when each movie is inspected.
func MoviesAfter(movies *pipeline.Pipeline[Movie], year int, yearOf func(Movie) int) *pipeline.Pipeline[Movie] {
	return pipeline.Where(movies, func(m Movie) bool { return yearOf(m) > year })
}

// Ratings maps movies to their rating. Every pulled movie fails.
func Ratings(movies *pipeline.Pipeline[Movie]) *pipeline.Pipeline[int] {
	return pipeline.Map(movies, func(_ context.Context, m Movie) (int, error) { return Rating(m) })
}
