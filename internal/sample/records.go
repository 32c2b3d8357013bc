// Package sample holds the demo records, their CSV sources, and the queries
// lazyq-demo runs over them.
package sample

import "encoding/json"

// Scores holds a user's subject grades.
type Scores struct {
	Math    int
	History int
	Science int
}

// User is an immutable user record. Fields are read through accessors so
// queries can only observe a user, never change it.
type User struct {
	id          int
	userName    string
	firstName   string
	lastName    string
	locationID  string
	countryCode int
	scores      Scores
}

// NewUser creates a User. locationID names the city the user lives in.
func NewUser(id int, userName, firstName, lastName, locationID string, countryCode int, scores Scores) User {
	return User{
		id:          id,
		userName:    userName,
		firstName:   firstName,
		lastName:    lastName,
		locationID:  locationID,
		countryCode: countryCode,
		scores:      scores,
	}
}

func (u User) ID() int            { return u.id }
func (u User) UserName() string   { return u.userName }
func (u User) FirstName() string  { return u.firstName }
func (u User) LastName() string   { return u.lastName }
func (u User) LocationID() string { return u.locationID }
func (u User) CountryCode() int   { return u.countryCode }
func (u User) Scores() Scores     { return u.scores }
func (u User) Math() int          { return u.scores.Math }

// MarshalJSON renders the user for structured logs.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int    `json:"id"`
		UserName    string `json:"user_name"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		LocationID  string `json:"location_id"`
		CountryCode int    `json:"country_code"`
		Math        int    `json:"math"`
		History     int    `json:"history"`
		Science     int    `json:"science"`
	}{u.id, u.userName, u.firstName, u.lastName, u.locationID, u.countryCode, u.scores.Math, u.scores.History, u.scores.Science})
}

// Location is an immutable city record.
type Location struct {
	city        string
	country     string
	countryCode int
	population  int
}

// NewLocation creates a Location.
func NewLocation(city, country string, countryCode, population int) Location {
	return Location{city: city, country: country, countryCode: countryCode, population: population}
}

func (l Location) City() string     { return l.city }
func (l Location) Country() string  { return l.country }
func (l Location) CountryCode() int { return l.countryCode }
func (l Location) Population() int  { return l.population }

// MarshalJSON renders the location for structured logs.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		City        string `json:"city"`
		Country     string `json:"country"`
		CountryCode int    `json:"country_code"`
		Population  int    `json:"population"`
	}{l.city, l.country, l.countryCode, l.population})
}

// Movie is an immutable film record.
type Movie struct {
	title string
	year  int
}

// NewMovie creates a Movie.
func NewMovie(title string, year int) Movie {
	return Movie{title: title, year: year}
}

func (m Movie) Title() string { return m.title }
func (m Movie) Year() int     { return m.year }

// MarshalJSON renders the movie for structured logs.
func (m Movie) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	}{m.title, m.year})
}

// UserLocation is the projection produced by joining a user with its city.
type UserLocation struct {
	UserName  string `json:"user_name"`
	FirstName string `json:"first_name"`
	Country   string `json:"country"`
	City      string `json:"city"`
}

// CountryCity is a location projected to its country and city.
type CountryCity struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// LocationUsers pairs a location with every user living there.
type LocationUsers struct {
	Location Location `json:"location"`
	Users    []User   `json:"users"`
}

// CountryUsers is the top users of one country.
type CountryUsers struct {
	Country string `json:"country"`
	Users   []User `json:"users"`
}

// LocationStats summarizes the math grades of one location.
type LocationStats struct {
	City  string  `json:"city"`
	Max   int     `json:"max"`
	Min   int     `json:"min"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}
