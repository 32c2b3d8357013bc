package pipeline

import (
	"context"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/kbukum/lazyq/errors"
)

// Fold drains p exactly once, threading state through accumulate for every
// value, and returns finalize applied to the final state. finalize runs only
// after the source is exhausted, so its failures (for example an empty input)
// are reported after the traversal, never during it.
func Fold[T, S, R any](
	ctx context.Context,
	p *Pipeline[T],
	seed S,
	accumulate func(S, T) S,
	finalize func(S) (R, error),
) (R, error) {
	it := p.create(ctx)
	defer it.Close()
	state := seed
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		if !ok {
			return finalize(state)
		}
		state = accumulate(state, val)
	}
}

// Number is the set of element types Stats can summarize.
type Number interface {
	constraints.Integer | constraints.Float
}

// Stats is the accumulator state for a single-pass max/min/mean fold.
// Max starts at the lowest sentinel and Min at the highest, so the first
// accumulated value replaces both.
type Stats[N Number] struct {
	Max   N
	Min   N
	Sum   float64
	Count int
}

// Summary is the finalized result of a Stats fold.
type Summary[N Number] struct {
	Max   N
	Min   N
	Mean  float64
	Count int
}

// NewStats returns an empty accumulator seeded with the given sentinels:
// lowest for Max and highest for Min.
func NewStats[N Number](lowest, highest N) Stats[N] {
	return Stats[N]{Max: lowest, Min: highest}
}

// IntStats returns an empty accumulator for int values.
func IntStats() Stats[int] {
	return NewStats(math.MinInt, math.MaxInt)
}

// FloatStats returns an empty accumulator for float64 values.
func FloatStats() Stats[float64] {
	return NewStats(math.Inf(-1), math.Inf(1))
}

// Add returns the state after accumulating v.
func (s Stats[N]) Add(v N) Stats[N] {
	s.Max = max(s.Max, v)
	s.Min = min(s.Min, v)
	s.Sum += float64(v)
	s.Count++
	return s
}

// Summary finalizes the accumulator. It fails with an EMPTY_AGGREGATE error
// when nothing was accumulated instead of reporting sentinels or NaN.
func (s Stats[N]) Summary() (Summary[N], error) {
	if s.Count == 0 {
		return Summary[N]{}, errors.EmptyAggregate("mean")
	}
	return Summary[N]{
		Max:   s.Max,
		Min:   s.Min,
		Mean:  s.Sum / float64(s.Count),
		Count: s.Count,
	}, nil
}

// Summarize computes max, min, and mean of value over p in one traversal.
// seed carries the type's sentinels; see IntStats and FloatStats.
func Summarize[T any, N Number](ctx context.Context, p *Pipeline[T], seed Stats[N], value func(T) N) (Summary[N], error) {
	return Fold(ctx, p, seed,
		func(s Stats[N], v T) Stats[N] { return s.Add(value(v)) },
		Stats[N].Summary,
	)
}
