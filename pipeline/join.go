package pipeline

import (
	"context"

	"github.com/kbukum/lazyq/errors"
)

// Join is an inner equality join. For each left value it emits one combined
// value per right value with an equal key, in right-source order; left values
// without a match produce nothing.
//
// The right pipeline is drained into a key index on the first Next; the left
// pipeline is then streamed one value at a time.
func Join[L, R any, K comparable, O any](
	left *Pipeline[L],
	right *Pipeline[R],
	leftKey KeyFunc[L, K],
	rightKey KeyFunc[R, K],
	combine func(L, R) (O, error),
) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &joinIter[L, R, K, O]{
				lookup:  lookup[L, R, K]{left: left.create(ctx), right: right, leftKey: leftKey, rightKey: rightKey, stage: StageJoin},
				combine: combine,
			}
		},
	}
}

// GroupJoin emits exactly one combined value per left value, pairing it with
// the grouping of every right value whose key matches. Left values without a
// match are kept and receive an empty grouping.
func GroupJoin[L, R any, K comparable, O any](
	left *Pipeline[L],
	right *Pipeline[R],
	leftKey KeyFunc[L, K],
	rightKey KeyFunc[R, K],
	combine func(L, Grouping[K, R]) (O, error),
) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &groupJoinIter[L, R, K, O]{
				lookup:  lookup[L, R, K]{left: left.create(ctx), right: right, leftKey: leftKey, rightKey: rightKey, stage: StageGroupJoin},
				combine: combine,
			}
		},
	}
}

// lookup streams the left side and resolves each left value against an index
// of the right side built on first use.
type lookup[L, R any, K comparable] struct {
	left     Iterator[L]
	right    *Pipeline[R]
	leftKey  KeyFunc[L, K]
	rightKey KeyFunc[R, K]
	stage    string
	index    map[K][]R
	pos      int
}

// next pulls one left value and returns it with its key and matches.
func (l *lookup[L, R, K]) next(ctx context.Context) (val L, key K, matches []R, ok bool, err error) {
	if l.index == nil {
		if l.index, err = l.build(ctx); err != nil {
			return val, key, nil, false, err
		}
	}
	val, ok, err = l.left.Next(ctx)
	if err != nil || !ok {
		return val, key, nil, false, err
	}
	pos := l.pos
	l.pos++
	key, err = l.leftKey(val)
	if err != nil {
		return val, key, nil, false, errors.StageFailed(l.stage, pos, err)
	}
	return val, key, l.index[key], true, nil
}

func (l *lookup[L, R, K]) build(ctx context.Context) (map[K][]R, error) {
	it := l.right.create(ctx)
	defer it.Close()
	index := make(map[K][]R)
	for i := 0; ; i++ {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return index, nil
		}
		k, err := l.rightKey(val)
		if err != nil {
			return nil, errors.StageFailed(l.stage, i, err).WithDetail("side", "right")
		}
		index[k] = append(index[k], val)
	}
}

func (l *lookup[L, R, K]) close() error { return l.left.Close() }

type joinIter[L, R any, K comparable, O any] struct {
	lookup  lookup[L, R, K]
	combine func(L, R) (O, error)
	current L
	pending []R
}

func (it *joinIter[L, R, K, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for len(it.pending) == 0 {
		val, _, matches, ok, err := it.lookup.next(ctx)
		if err != nil || !ok {
			return result, false, err
		}
		it.current, it.pending = val, matches
	}
	r := it.pending[0]
	it.pending = it.pending[1:]
	out, err := it.combine(it.current, r)
	if err != nil {
		return result, false, errors.StageFailed(StageJoin, it.lookup.pos-1, err)
	}
	return out, true, nil
}

func (it *joinIter[L, R, K, O]) Close() error { return it.lookup.close() }

type groupJoinIter[L, R any, K comparable, O any] struct {
	lookup  lookup[L, R, K]
	combine func(L, Grouping[K, R]) (O, error)
}

func (it *groupJoinIter[L, R, K, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, key, matches, ok, err := it.lookup.next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	out, err := it.combine(val, Grouping[K, R]{Key: key, items: matches})
	if err != nil {
		return result, false, errors.StageFailed(StageGroupJoin, it.lookup.pos-1, err)
	}
	return out, true, nil
}

func (it *groupJoinIter[L, R, K, O]) Close() error { return it.lookup.close() }
