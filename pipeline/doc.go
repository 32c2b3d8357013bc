// Package pipeline provides composable, pull-based query operators over
// sequences of values.
//
// Pipelines are lazy: constructing one performs no work. Values are produced
// only when a consumer calls Next, directly through Iter or through a terminal
// such as Collect, Count, First, Fold, or ForEach. Each stage pulls from the
// previous stage one value at a time, and every terminal call starts a fresh
// traversal from the source.
//
// Errors returned by caller-supplied functions surface from the Next call that
// pulled the failing value, wrapped in an errors.StageFailed that keeps the
// original error reachable through errors.Is and errors.As.
//
// # Operators
//
// Streaming (yield after reading a prefix of the source):
//
//   - Filter / Where: keep values matching a predicate
//   - Map: transform each value
//   - FlatMap: transform each value into a pipeline and flatten
//   - Take / Skip: bound or offset the sequence; Take never over-pulls
//   - Tap: side-effect without altering the value
//   - Chunk: emit fixed-size slices
//   - Concat: join pipelines sequentially
//   - Join / GroupJoin: stream the left side against an index of the right side
//
// Non-streaming (drain the whole source on the first pull):
//
//   - OrderBy / OrderByDescending / ThenBy / ThenByDescending: stable multi-key sort
//   - GroupBy: partition into groupings in first-seen key order
//   - Reduce: accumulate into a single value
//
// Eager and terminal:
//
//   - FilterEager: materialize a filtered slice immediately
//   - Collect, Count, First, ForEach, Drain, All
//   - Fold / Summarize: single-pass aggregation with a finalize step
//
// # Usage
//
//	users := pipeline.FromSlice(all)
//	adults := pipeline.Where(users, func(u User) bool { return u.Age >= 18 })
//	sorted := pipeline.ThenBy(
//	    pipeline.OrderBy(adults, pipeline.Key(func(u User) string { return u.LastName })),
//	    pipeline.Key(func(u User) string { return u.FirstName }),
//	)
//	firstPage, _ := pipeline.Collect(ctx, pipeline.Take(sorted.Pipeline, 10))
//
// Single-pass statistics:
//
//	summary, err := pipeline.Summarize(ctx, users, pipeline.IntStats(),
//	    func(u User) int { return u.Score })
//	if errors.Is(err, lqerrors.ErrEmptyAggregate) { ... }
package pipeline
