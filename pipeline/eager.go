package pipeline

import (
	"context"

	"github.com/kbukum/lazyq/errors"
)

// FilterEager drains p immediately and returns every value that satisfies the
// predicate, in source order. The whole source is traversed exactly once,
// even when the caller only reads the first result afterwards; use Filter for
// deferred evaluation.
func FilterEager[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) (bool, error)) ([]T, error) {
	it := p.create(ctx)
	defer it.Close()
	result := make([]T, 0)
	for index := 0; ; index++ {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		keep, err := fn(ctx, val)
		if err != nil {
			return nil, errors.StageFailed(StageFilter, index, err)
		}
		if keep {
			result = append(result, val)
		}
	}
}
