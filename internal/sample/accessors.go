package sample

import (
	"github.com/kbukum/lazyq/errors"
	"github.com/kbukum/lazyq/logger"
)

// YearLogged returns a year accessor that logs each inspection, making it
// visible in the log exactly when and how often a query reads a movie.
func YearLogged(log *logger.Logger) func(Movie) int {
	return func(m Movie) int {
		log.Debug("inspecting year", logger.Fields("title", m.title, "year", m.year))
		return m.year
	}
}

// Rating always fails with an UNAVAILABLE error. A query reading it only
// surfaces the error when a movie is actually pulled.
func Rating(m Movie) (int, error) {
	return 0, errors.Unavailable("rating").WithDetail("title", m.title)
}
