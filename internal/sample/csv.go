package sample

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/kbukum/lazyq/errors"
	"github.com/kbukum/lazyq/pipeline"
	"github.com/kbukum/lazyq/resilience"
)

// Opener opens a fresh reader for one traversal. It is called on the first
// pull, never when the pipeline is built.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// OpenString returns an Opener over an in-memory document.
func OpenString(doc string) Opener {
	return func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(doc)), nil
	}
}

// RetryingOpener retries open with cfg. A missing file fails immediately.
func RetryingOpener(open Opener, cfg resilience.RetryConfig) Opener {
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = resilience.DefaultRetryIf
	}
	cfg.RetryIf = func(err error) bool {
		return !stderrors.Is(err, fs.ErrNotExist) && retryIf(err)
	}
	return func(ctx context.Context) (io.ReadCloser, error) {
		return resilience.Retry(ctx, cfg, func() (io.ReadCloser, error) { return open(ctx) })
	}
}

const (
	userColumns     = 9
	locationColumns = 4
)

// ReadUsers streams users from a semicolon-separated document with a header
// row. Columns: user name, id, first name, last name, location, country code,
// math, history, science. Rows are decoded one per pull.
func ReadUsers(open Opener) *pipeline.Pipeline[User] {
	return readCSV(open, userColumns, func(line int, cols []string) (User, error) {
		ints, err := atoi(line, cols[1], cols[5], cols[6], cols[7], cols[8])
		if err != nil {
			return User{}, err
		}
		return NewUser(ints[0], cols[0], cols[2], cols[3], cols[4], ints[1],
			Scores{Math: ints[2], History: ints[3], Science: ints[4]}), nil
	})
}

// ReadLocations streams locations from a semicolon-separated document with a
// header row. Columns: city, country, country code, population.
func ReadLocations(open Opener) *pipeline.Pipeline[Location] {
	return readCSV(open, locationColumns, func(line int, cols []string) (Location, error) {
		ints, err := atoi(line, cols[2], cols[3])
		if err != nil {
			return Location{}, err
		}
		return NewLocation(cols[0], cols[1], ints[0], ints[1]), nil
	})
}

func atoi(line int, fields ...string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.MalformedRecord(line, "not a number: "+f).WithCause(err)
		}
		out[i] = n
	}
	return out, nil
}

func readCSV[T any](open Opener, columns int, decode func(line int, cols []string) (T, error)) *pipeline.Pipeline[T] {
	return pipeline.FromFunc(func(context.Context) pipeline.Iterator[T] {
		return &csvIter[T]{open: open, columns: columns, decode: decode}
	})
}

type csvIter[T any] struct {
	open    Opener
	columns int
	decode  func(line int, cols []string) (T, error)
	rc      io.ReadCloser
	reader  *csv.Reader
	done    bool
}

func (it *csvIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.done {
		return result, false, nil
	}
	if err := ctx.Err(); err != nil {
		return result, false, err
	}
	if it.reader == nil {
		if err := it.start(ctx); err != nil {
			_ = it.finish()
			return result, false, err
		}
	}
	for {
		cols, err := it.reader.Read()
		if err == io.EOF {
			if err := it.finish(); err != nil {
				return result, false, errors.Internal(err)
			}
			return result, false, nil
		}
		if err != nil {
			_ = it.finish()
			return result, false, errors.MalformedRecord(parseErrorLine(err), "unreadable row").WithCause(err)
		}
		line, _ := it.reader.FieldPos(0)
		if len(cols) == 1 && strings.TrimSpace(cols[0]) == "" {
			continue
		}
		if len(cols) != it.columns {
			_ = it.finish()
			return result, false, errors.MalformedRecord(line, "expected "+strconv.Itoa(it.columns)+" columns, got "+strconv.Itoa(len(cols)))
		}
		val, err := it.decode(line, cols)
		if err != nil {
			_ = it.finish()
			return result, false, err
		}
		return val, true, nil
	}
}

func (it *csvIter[T]) start(ctx context.Context) error {
	rc, err := it.open(ctx)
	if err != nil {
		return errors.Internal(err)
	}
	it.rc = rc
	it.reader = csv.NewReader(rc)
	it.reader.Comma = ';'
	it.reader.FieldsPerRecord = -1
	// header
	if _, err := it.reader.Read(); err != nil && err != io.EOF {
		return errors.MalformedRecord(parseErrorLine(err), "unreadable header").WithCause(err)
	}
	return nil
}

func parseErrorLine(err error) int {
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		return parseErr.Line
	}
	return 0
}

func (it *csvIter[T]) Close() error { return it.finish() }

// finish ends the traversal and closes the document once.
func (it *csvIter[T]) finish() error {
	it.done = true
	if it.rc == nil {
		return nil
	}
	rc := it.rc
	it.rc = nil
	return rc.Close()
}
