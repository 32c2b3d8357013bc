package pipeline

import (
	"cmp"
	"context"
	"slices"

	"github.com/kbukum/lazyq/errors"
)

// Ordered is a pipeline sorted by one or more keys. It is produced by OrderBy
// and refined by ThenBy; the embedded Pipeline is what terminals consume.
//
// Sorting is deferred but not streaming: nothing happens at construction, and
// the first Next of a traversal drains and sorts the entire source.
type Ordered[T any] struct {
	*Pipeline[T]
	source *Pipeline[T]
	levels []sortLevel[T]
}

// sortLevel computes the keys of every buffered item once and returns a
// comparator over item indexes.
type sortLevel[T any] func(items []T) (func(a, b int) int, error)

// OrderBy sorts p ascending by key. Calling OrderBy on an already ordered
// pipeline discards the earlier ordering; use ThenBy to add tie-breakers.
func OrderBy[T any, K cmp.Ordered](p *Pipeline[T], key KeyFunc[T, K]) *Ordered[T] {
	return newOrdered(unordered(p), []sortLevel[T]{newSortLevel(key, false)})
}

// OrderByDescending sorts p descending by key.
func OrderByDescending[T any, K cmp.Ordered](p *Pipeline[T], key KeyFunc[T, K]) *Ordered[T] {
	return newOrdered(unordered(p), []sortLevel[T]{newSortLevel(key, true)})
}

// ThenBy breaks ties of o ascending by key. Values equal on every key keep
// their source order.
func ThenBy[T any, K cmp.Ordered](o *Ordered[T], key KeyFunc[T, K]) *Ordered[T] {
	return newOrdered(o.source, append(slices.Clone(o.levels), newSortLevel(key, false)))
}

// ThenByDescending breaks ties of o descending by key.
func ThenByDescending[T any, K cmp.Ordered](o *Ordered[T], key KeyFunc[T, K]) *Ordered[T] {
	return newOrdered(o.source, append(slices.Clone(o.levels), newSortLevel(key, true)))
}

func unordered[T any](p *Pipeline[T]) *Pipeline[T] {
	if p.base != nil {
		return p.base
	}
	return p
}

func newOrdered[T any](source *Pipeline[T], levels []sortLevel[T]) *Ordered[T] {
	return &Ordered[T]{
		Pipeline: &Pipeline[T]{
			create: func(ctx context.Context) Iterator[T] {
				return &sortIter[T]{source: source.create(ctx), levels: levels}
			},
			base: source,
		},
		source: source,
		levels: levels,
	}
}

func newSortLevel[T any, K cmp.Ordered](key KeyFunc[T, K], descending bool) sortLevel[T] {
	return func(items []T) (func(a, b int) int, error) {
		keys := make([]K, len(items))
		for i, item := range items {
			k, err := key(item)
			if err != nil {
				return nil, errors.StageFailed(StageOrderBy, i, err)
			}
			keys[i] = k
		}
		return func(a, b int) int {
			if descending {
				return cmp.Compare(keys[b], keys[a])
			}
			return cmp.Compare(keys[a], keys[b])
		}, nil
	}
}

type sortIter[T any] struct {
	source Iterator[T]
	levels []sortLevel[T]
	sorted []T
	pos    int
	loaded bool
}

func (it *sortIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if !it.loaded {
		it.loaded = true
		if err := it.load(ctx); err != nil {
			var zero T
			return zero, false, err
		}
	}
	if it.pos >= len(it.sorted) {
		var zero T
		return zero, false, nil
	}
	val := it.sorted[it.pos]
	it.pos++
	return val, true, nil
}

func (it *sortIter[T]) load(ctx context.Context) error {
	items, err := drain(ctx, it.source)
	if err != nil {
		return err
	}
	cmps := make([]func(a, b int) int, 0, len(it.levels))
	for _, level := range it.levels {
		c, err := level(items)
		if err != nil {
			return err
		}
		cmps = append(cmps, c)
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	})
	it.sorted = make([]T, len(items))
	for i, idx := range order {
		it.sorted[i] = items[idx]
	}
	return nil
}

func (it *sortIter[T]) Close() error { return it.source.Close() }

// drain pulls every remaining value of it into memory.
func drain[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var items []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}
