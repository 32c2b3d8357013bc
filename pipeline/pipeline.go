package pipeline

import (
	"context"
	"iter"

	"github.com/kbukum/lazyq/errors"
)

// Iterator provides pull-based sequential access to a stream of values.
// A single Iterator is one traversal: its position only moves forward and it
// must not be shared between consumers.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted,
	// and keeps doing so on every later call.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Pipeline represents a lazy, pull-based sequence.
// No work happens until values are pulled via Iter or a terminal such as
// Collect, Count, First, Fold, or ForEach. Every terminal call starts a fresh
// traversal by re-invoking the factory the pipeline was built from.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
	// base is the unsorted input of an ordering stage. A later OrderBy sorts
	// base instead of this pipeline so the earlier ordering is discarded.
	base *Pipeline[T]
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion or the first error.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator.
// The iterator is single-pass, so only the first traversal sees its values;
// use FromFunc or Generate when the pipeline must be restartable.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return it
		},
	}
}

// FromSlice creates a pipeline from a slice of values.
// The slice is read, never modified.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
// The factory is called once per traversal.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// Generate creates a pipeline from a closure-based producer. factory is called
// once per traversal and returns the step function for that traversal; the step
// function reports (value, true, nil) per element and (zero, false, nil) at the
// end. Once the step function reports the end or an error it is not called again.
//
//	p := pipeline.Generate(func() func(context.Context) (int, bool, error) {
//	    n := 0
//	    return func(context.Context) (int, bool, error) {
//	        n++
//	        return n, n <= 3, nil
//	    }
//	})
func Generate[T any](factory func() func(ctx context.Context) (T, bool, error)) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &generatorIter[T]{step: factory()}
		},
	}
}

// FromSeq creates a pipeline from a range-over-func sequence. Each traversal
// converts seq into a pull iterator, so seq runs only as far as values are pulled.
func FromSeq[T any](seq iter.Seq[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			next, stop := iter.Pull(seq)
			return &seqIter[T]{next: next, stop: stop}
		},
	}
}

// --- Terminals ---

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			it := p.create(ctx)
			defer it.Close()
			for {
				val, ok, err := it.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs the pipeline and returns all values as a slice.
// On error the values pulled before the failure are returned with it.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	it := p.create(ctx)
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls all values and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Count runs a full traversal and returns the number of values.
// Each call traverses the source again.
func Count[T any](ctx context.Context, p *Pipeline[T]) (int, error) {
	it := p.create(ctx)
	defer it.Close()
	n := 0
	for {
		_, ok, err := it.Next(ctx)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// First pulls a single value. ok is false when the pipeline is empty.
func First[T any](ctx context.Context, p *Pipeline[T]) (val T, ok bool, err error) {
	it := p.create(ctx)
	defer it.Close()
	return it.Next(ctx)
}

// Any reports whether some value satisfies pred. It stops pulling at the
// first match. An empty pipeline reports false.
func Any[T any](ctx context.Context, p *Pipeline[T], pred func(context.Context, T) (bool, error)) (bool, error) {
	return search(ctx, p, StageAny, pred, true)
}

// Every reports whether all values satisfy pred. It stops pulling at the
// first value that does not. An empty pipeline reports true.
func Every[T any](ctx context.Context, p *Pipeline[T], pred func(context.Context, T) (bool, error)) (bool, error) {
	missed, err := search(ctx, p, StageEvery, pred, false)
	if err != nil {
		return false, err
	}
	return !missed, nil
}

// search pulls until pred returns want.
func search[T any](ctx context.Context, p *Pipeline[T], stage string, pred func(context.Context, T) (bool, error), want bool) (bool, error) {
	it := p.create(ctx)
	defer it.Close()
	for idx := 0; ; idx++ {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		match, err := pred(ctx, val)
		if err != nil {
			return false, errors.StageFailed(stage, idx, err)
		}
		if match == want {
			return true, nil
		}
	}
}

// All returns a range-over-func view of one traversal. Iteration stops after
// the first error, which is yielded with a zero value.
func All[T any](ctx context.Context, p *Pipeline[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := p.create(ctx)
		defer it.Close()
		for {
			val, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(val, nil) {
				return
			}
		}
	}
}

// Iter returns the raw Iterator for a new traversal. The caller must Close() it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type generatorIter[T any] struct {
	step func(ctx context.Context) (T, bool, error)
	done bool
}

func (it *generatorIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	val, ok, err := it.step(ctx)
	if err != nil || !ok {
		it.done = true
		return zero, false, err
	}
	return val, true, nil
}

func (it *generatorIter[T]) Close() error {
	it.done = true
	return nil
}

type seqIter[T any] struct {
	next func() (T, bool)
	stop func()
}

func (it *seqIter[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	val, ok := it.next()
	return val, ok, nil
}

func (it *seqIter[T]) Close() error {
	it.stop()
	return nil
}
