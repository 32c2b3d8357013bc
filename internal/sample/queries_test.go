package sample

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/kbukum/lazyq/errors"
	"github.com/kbukum/lazyq/logger"
	"github.com/kbukum/lazyq/pipeline"
)

// counted wraps p so every value pulled from it increments *pulls.
func counted[T any](p *pipeline.Pipeline[T], pulls *int) *pipeline.Pipeline[T] {
	return pipeline.Tap(p, func(context.Context, T) error {
		*pulls++
		return nil
	})
}

func collect[T any](t *testing.T, p *pipeline.Pipeline[T]) []T {
	t.Helper()
	got, err := pipeline.Collect(context.Background(), p)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return got
}

func userNames(us []User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.UserName()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mathStatsMultiPass computes the same result as MathStatsByLocation with
// three separate traversals of the users per location.
func mathStatsMultiPass(ctx context.Context, users *pipeline.Pipeline[User]) ([]LocationStats, error) {
	keys, err := pipeline.Collect(ctx, pipeline.Map(pipeline.GroupBy(users, pipeline.Key(upperLocation)),
		func(_ context.Context, g pipeline.Grouping[string, User]) (string, error) { return g.Key, nil }))
	if err != nil {
		return nil, err
	}
	out := make([]LocationStats, 0, len(keys))
	for _, key := range keys {
		members := pipeline.Where(users, func(u User) bool { return upperLocation(u) == key })
		hi, err := pipeline.Fold(ctx, members, math.MinInt,
			func(m int, u User) int { return max(m, u.Math()) },
			func(m int) (int, error) { return m, nil })
		if err != nil {
			return nil, err
		}
		lo, err := pipeline.Fold(ctx, members, math.MaxInt,
			func(m int, u User) int { return min(m, u.Math()) },
			func(m int) (int, error) { return m, nil })
		if err != nil {
			return nil, err
		}
		mean, err := pipeline.Fold(ctx, members, [2]int{},
			func(acc [2]int, u User) [2]int { return [2]int{acc[0] + u.Math(), acc[1] + 1} },
			func(acc [2]int) (LocationStats, error) {
				return LocationStats{Mean: float64(acc[0]) / float64(acc[1]), Count: acc[1]}, nil
			})
		if err != nil {
			return nil, err
		}
		out = append(out, LocationStats{City: key, Max: hi, Min: lo, Mean: mean.Mean, Count: mean.Count})
	}
	return out, nil
}

func TestUsersByFirstName(t *testing.T) {
	q, err := UsersByFirstName(Users(), 5000)
	if err != nil {
		t.Fatal(err)
	}
	got := userNames(collect(t, pipeline.Take(q, 3)))
	want := []string{"asmith", "bmoreno", "kwong"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUsersByFirstName_InvalidMinID(t *testing.T) {
	_, err := UsersByFirstName(Users(), -1)
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["argument"] != "min_id" {
		t.Errorf("argument = %v, want min_id", appErr.Details["argument"])
	}
}

func TestCitiesDescending(t *testing.T) {
	var got []string
	for _, c := range collect(t, CitiesDescending(Locations())) {
		got = append(got, c.City+"/"+c.Country)
	}
	want := []string{"Rosario/Argentina", "Paris/France", "Madrid/Spain", "Lisbon/Portugal", "Cordoba/Argentina", "Cordoba/Spain"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUsersWithLocation(t *testing.T) {
	tests := []struct {
		name string
		q    *pipeline.Pipeline[UserLocation]
		want []string
	}{
		{
			name: "city",
			q:    UsersWithLocation(Users(), Locations()),
			want: []string{
				"Pierre@Paris/France", "Maria@Madrid/Spain", "Luca@Rosario/Argentina",
				"John@Cordoba/Argentina", "John@Cordoba/Spain", "Carla@Lisbon/Portugal",
				"Anna@Cordoba/Argentina", "Anna@Cordoba/Spain",
			},
		},
		{
			name: "city and country code",
			q:    UsersWithLocationAndCountry(Users(), Locations()),
			want: []string{
				"Pierre@Paris/France", "Maria@Madrid/Spain", "Luca@Rosario/Argentina",
				"John@Cordoba/Argentina", "Carla@Lisbon/Portugal", "Anna@Cordoba/Spain",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, ul := range collect(t, tc.q) {
				got = append(got, fmt.Sprintf("%s@%s/%s", ul.FirstName, ul.City, ul.Country))
			}
			if !equalStrings(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLocationsByCity(t *testing.T) {
	var got []string
	for _, g := range collect(t, LocationsByCity(Locations())) {
		got = append(got, fmt.Sprintf("%s:%d", g.Key, g.Len()))
	}
	want := []string{"CORDOBA:2", "LISBON:1", "MADRID:1", "PARIS:1", "ROSARIO:1"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUsersPerLocation(t *testing.T) {
	var got []string
	for _, lu := range collect(t, UsersPerLocation(Locations(), Users())) {
		got = append(got, lu.Location.Country()+"/"+lu.Location.City()+":"+strings.Join(userNames(lu.Users), ","))
	}
	want := []string{
		"Argentina/Cordoba:jdoe,asmith",
		"Spain/Cordoba:jdoe,asmith",
		"Portugal/Lisbon:csilva",
		"Spain/Madrid:mgarcia",
		"France/Paris:pdupont",
		"Argentina/Rosario:lrossi",
	}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUsersPerLocation_KeepsEmptyLocations(t *testing.T) {
	locations := pipeline.FromSlice([]Location{NewLocation("Oslo", "Norway", 47, 709000)})
	got := collect(t, UsersPerLocation(locations, Users()))
	if len(got) != 1 || len(got[0].Users) != 0 {
		t.Errorf("expected one location with no users, got %+v", got)
	}
}

func TestTopUsersPerCountry(t *testing.T) {
	q, err := TopUsersPerCountry(Locations(), Users(), 2)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, cu := range collect(t, q) {
		got = append(got, cu.Country+":"+strings.Join(userNames(cu.Users), ","))
	}
	want := []string{
		"Argentina:lrossi,jdoe",
		"Spain:mgarcia,jdoe",
		"Portugal:csilva",
		"France:pdupont",
	}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTopUsersPerCountry_InvalidTop(t *testing.T) {
	if _, err := TopUsersPerCountry(Locations(), Users(), 0); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestMathStatsByLocation(t *testing.T) {
	got := collect(t, MathStatsByLocation(Users()))
	want := []LocationStats{
		{City: "ROSARIO", Max: 55, Min: 55, Mean: 55, Count: 1},
		{City: "PARIS", Max: 69, Min: 69, Mean: 69, Count: 1},
		{City: "LISBON", Max: 73, Min: 73, Mean: 73, Count: 1},
		{City: "CORDOBA", Max: 84, Min: 62, Mean: 224.0 / 3, Count: 3},
		{City: "MADRID", Max: 91, Min: 91, Mean: 91, Count: 1},
		{City: "TOKYO", Max: 99, Min: 99, Mean: 99, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.City != w.City || g.Max != w.Max || g.Min != w.Min || g.Count != w.Count || math.Abs(g.Mean-w.Mean) > 1e-9 {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestMathStatsByLocation_SinglePass(t *testing.T) {
	ctx := context.Background()
	var single, multi int

	got, err := pipeline.Collect(ctx, MathStatsByLocation(counted(Users(), &single)))
	if err != nil {
		t.Fatal(err)
	}
	reference, err := mathStatsMultiPass(ctx, counted(Users(), &multi))
	if err != nil {
		t.Fatal(err)
	}

	if single != 8 {
		t.Errorf("single-pass pulls = %d, want 8", single)
	}
	if multi <= 3*single {
		t.Errorf("multi-pass pulls = %d, expected more than %d", multi, 3*single)
	}

	byCity := make(map[string]LocationStats, len(reference))
	for _, s := range reference {
		byCity[s.City] = s
	}
	for _, s := range got {
		r := byCity[s.City]
		if s.Max != r.Max || s.Min != r.Min || math.Abs(s.Mean-r.Mean) > 1e-9 {
			t.Errorf("%s: single %+v != multi %+v", s.City, s, r)
		}
	}
}

func TestMoviesAfter_InspectsOnlyWhatIsPulled(t *testing.T) {
	tests := []struct {
		name      string
		take      int
		wantLines int
		want      []string
	}{
		{"take one", 1, 1, []string{"The Dark Knight"}},
		{"all", -1, 4, []string{"The Dark Knight", "Inception"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "sample", &buf)
			q := MoviesAfter(pipeline.FromSlice(Movies()), 2000, YearLogged(log))
			if buf.Len() != 0 {
				t.Fatal("building the query inspected a movie")
			}
			if tc.take >= 0 {
				q = pipeline.Take(q, tc.take)
			}
			var got []string
			for _, m := range collect(t, q) {
				got = append(got, m.Title())
			}
			if !equalStrings(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if lines := strings.Count(buf.String(), "inspecting year"); lines != tc.wantLines {
				t.Errorf("year inspected %d times, want %d", lines, tc.wantLines)
			}
		})
	}
}

func TestRatings_FailOnlyWhenPulled(t *testing.T) {
	ctx := context.Background()
	q := Ratings(pipeline.FromSlice(Movies()))

	if n, err := pipeline.Count(ctx, pipeline.Take(q, 0)); err != nil || n != 0 {
		t.Fatalf("Take(0) = %d, %v", n, err)
	}

	_, _, err := pipeline.First(ctx, q)
	if !errors.IsCode(err, errors.ErrCodeStageFailed) {
		t.Fatalf("expected STAGE_FAILED, got %v", err)
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Details["index"] != 0 {
		t.Errorf("expected failure at index 0, got %v", err)
	}
	if !stderrors.Is(err, errors.New(errors.ErrCodeUnavailable, "")) {
		t.Errorf("expected the UNAVAILABLE cause to be reachable, got %v", err)
	}
}

func TestRecordsMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    interface{ MarshalJSON() ([]byte, error) }
		want string
	}{
		{"movie", NewMovie("Inception", 2010), `{"title":"Inception","year":2010}`},
		{"location", NewLocation("Paris", "France", 33, 2161000), `{"city":"Paris","country":"France","country_code":33,"population":2161000}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.v.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tc.want {
				t.Errorf("got %s, want %s", b, tc.want)
			}
		})
	}
}
