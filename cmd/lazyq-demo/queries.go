package main

import (
	"context"

	"github.com/kbukum/lazyq/bootstrap"
	"github.com/kbukum/lazyq/internal/sample"
	"github.com/kbukum/lazyq/logger"
	"github.com/kbukum/lazyq/observability"
	"github.com/kbukum/lazyq/pipeline"
	"github.com/kbukum/lazyq/storage"
)

// cityGroup is a LocationsByCity grouping flattened for logging.
type cityGroup struct {
	City      string            `json:"city"`
	Locations []sample.Location `json:"locations"`
}

type runner struct {
	app     *bootstrap.App[*DemoConfig]
	metrics *observability.Metrics
}

// runQuery instruments p, drains it, and logs the first Preview results.
// Failures are recorded in the run summary; only cancellation stops the demo.
func runQuery[T any](ctx context.Context, r *runner, name string, p *pipeline.Pipeline[T]) error {
	log := r.app.Logger.WithFields(logger.Fields(logger.FieldQuery, name))
	instrumented := observability.Traced(observability.Metered(observability.Logged(p, log, name), r.metrics, name), name)

	err := r.app.Track(name, func() (int, error) {
		results, err := pipeline.Collect(ctx, instrumented)
		for i, v := range results[:min(len(results), r.app.Cfg.Demo.Preview)] {
			log.Info("result", logger.Fields(logger.FieldIndex, i, logger.FieldElement, v))
		}
		return len(results), err
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		log.Warn("query failed", logger.ErrorFields(name, err))
	}
	return nil
}

// sources returns the built-in tables unless files are configured. File
// paths are read from disk, or from the object store when one is enabled.
func sources(ctx context.Context, s Settings, log *logger.Logger) (*pipeline.Pipeline[sample.User], *pipeline.Pipeline[sample.Location], error) {
	users, locations := sample.Users(), sample.Locations()
	open := sample.OpenFile
	if s.Storage.Enabled {
		store, err := storage.New(ctx, s.Storage, log)
		if err != nil {
			return nil, nil, err
		}
		open = func(path string) sample.Opener { return sample.OpenObject(store, path) }
	}
	if s.UsersFile != "" {
		users = sample.ReadUsers(sample.RetryingOpener(open(s.UsersFile), s.Retry))
	}
	if s.LocationsFile != "" {
		locations = sample.ReadLocations(sample.RetryingOpener(open(s.LocationsFile), s.Retry))
	}
	return users, locations, nil
}

// runQueries executes every sample query in order.
func runQueries(ctx context.Context, r *runner) error {
	settings := r.app.Cfg.Demo
	users, locations, err := sources(ctx, settings, r.app.Logger)
	if err != nil {
		return err
	}
	movies := pipeline.FromSlice(sample.Movies())

	byFirstName, err := sample.UsersByFirstName(users, settings.MinUserID)
	if err != nil {
		return err
	}
	topPerCountry, err := sample.TopUsersPerCountry(locations, users, settings.Top)
	if err != nil {
		return err
	}
	cityGroups := pipeline.Map(sample.LocationsByCity(locations),
		func(_ context.Context, g pipeline.Grouping[string, sample.Location]) (cityGroup, error) {
			return cityGroup{City: g.Key, Locations: g.Items()}, nil
		})
	yearOf := sample.YearLogged(logger.Get("movies"))

	steps := []func() error{
		func() error {
			return runQuery(ctx, r, "users_by_first_name", pipeline.Take(byFirstName, settings.Top))
		},
		func() error {
			return runQuery(ctx, r, "user_pages", pipeline.Chunk(users, settings.PageSize))
		},
		func() error {
			return runQuery(ctx, r, "cities_descending", sample.CitiesDescending(locations))
		},
		func() error {
			return runQuery(ctx, r, "users_with_location", sample.UsersWithLocation(users, locations))
		},
		func() error {
			return runQuery(ctx, r, "users_with_location_and_country", sample.UsersWithLocationAndCountry(users, locations))
		},
		func() error {
			return runQuery(ctx, r, "locations_by_city", cityGroups)
		},
		func() error {
			return runQuery(ctx, r, "users_per_location", sample.UsersPerLocation(locations, users))
		},
		func() error {
			return runQuery(ctx, r, "top_users_per_country", topPerCountry)
		},
		func() error {
			return runQuery(ctx, r, "math_stats_by_location", sample.MathStatsByLocation(users))
		},
		func() error {
			return runQuery(ctx, r, "first_recent_movie", pipeline.Take(sample.MoviesAfter(movies, settings.MovieYear, yearOf), 1))
		},
		func() error {
			return runQuery(ctx, r, "movie_ratings", sample.Ratings(movies))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
