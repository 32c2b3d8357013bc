package pipeline

import (
	"context"
	"slices"

	"github.com/kbukum/lazyq/errors"
)

// Grouping pairs a key with every value whose extracted key equals it, in the
// order those values were encountered. Groupings are fully materialized.
type Grouping[K comparable, T any] struct {
	Key   K
	items []T
}

// NewGrouping creates a grouping over a copy of items.
func NewGrouping[K comparable, T any](key K, items []T) Grouping[K, T] {
	return Grouping[K, T]{Key: key, items: slices.Clone(items)}
}

// Len returns the number of values in the group.
func (g Grouping[K, T]) Len() int { return len(g.items) }

// Items returns a copy of the group's values.
func (g Grouping[K, T]) Items() []T { return slices.Clone(g.items) }

// Pipeline exposes the group's values as a restartable pipeline.
func (g Grouping[K, T]) Pipeline() *Pipeline[T] { return FromSlice(g.items) }

// GroupBy partitions p by key. Groups are emitted in the order their key was
// first seen; chain OrderBy on Grouping.Key for sorted keys. The first Next
// drains the whole source, since no group is complete until the source ends.
func GroupBy[T any, K comparable](p *Pipeline[T], key KeyFunc[T, K]) *Pipeline[Grouping[K, T]] {
	return &Pipeline[Grouping[K, T]]{
		create: func(ctx context.Context) Iterator[Grouping[K, T]] {
			return &groupIter[T, K]{source: p.create(ctx), key: key}
		},
	}
}

type groupIter[T any, K comparable] struct {
	source Iterator[T]
	key    KeyFunc[T, K]
	groups []Grouping[K, T]
	pos    int
	loaded bool
}

func (it *groupIter[T, K]) Next(ctx context.Context) (result Grouping[K, T], ok bool, err error) {
	if !it.loaded {
		it.loaded = true
		groups, err := it.load(ctx)
		if err != nil {
			return result, false, err
		}
		it.groups = groups
	}
	if it.pos >= len(it.groups) {
		return result, false, nil
	}
	g := it.groups[it.pos]
	it.pos++
	return g, true, nil
}

func (it *groupIter[T, K]) load(ctx context.Context) ([]Grouping[K, T], error) {
	var groups []Grouping[K, T]
	slot := make(map[K]int)
	for index := 0; ; index++ {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return groups, nil
		}
		k, err := it.key(val)
		if err != nil {
			return nil, errors.StageFailed(StageGroupBy, index, err)
		}
		i, seen := slot[k]
		if !seen {
			i = len(groups)
			slot[k] = i
			groups = append(groups, Grouping[K, T]{Key: k})
		}
		groups[i].items = append(groups[i].items, val)
	}
}

func (it *groupIter[T, K]) Close() error { return it.source.Close() }
