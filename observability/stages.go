package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lazyq/errors"
	"github.com/kbukum/lazyq/logger"
	"github.com/kbukum/lazyq/pipeline"
)

// Traversal outcomes reported by the stages.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusClosed = "closed"
)

// errorCode classifies err for logs and metrics.
func errorCode(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "UNKNOWN"
}

// Logged passes every element of p through unchanged and logs at each pull:
// elements and exhaustion at debug level, errors at error level. Each
// traversal gets its own run_id.
func Logged[T any](p *pipeline.Pipeline[T], log *logger.Logger, stage string) *pipeline.Pipeline[T] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[T] {
		return &loggedIter[T]{source: p.Iter(ctx), base: log.WithStage(stage), runID: uuid.NewString()}
	})
}

type loggedIter[T any] struct {
	source pipeline.Iterator[T]
	base   *logger.Logger
	log    *logger.Logger
	runID  string
	index  int
	done   bool
}

func (it *loggedIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.log == nil {
		it.log = it.base.WithContext(logger.ContextWithRunID(ctx, it.runID))
	}
	val, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		it.log.Error("stage failed", logger.MergeWithError(logger.Fields(logger.FieldIndex, it.index, "code", errorCode(err)), err))
	case !ok:
		if !it.done {
			it.done = true
			it.log.Debug("stage exhausted", logger.Fields(logger.FieldElements, it.index))
		}
	default:
		if it.log.DebugEnabled() {
			it.log.Debug("element", logger.Fields(logger.FieldIndex, it.index, logger.FieldElement, val))
		}
		it.index++
	}
	return val, ok, err
}

func (it *loggedIter[T]) Close() error { return it.source.Close() }

// Metered passes every element of p through unchanged and records element,
// error, and traversal-duration metrics. A nil metrics makes it a no-op.
func Metered[T any](p *pipeline.Pipeline[T], metrics *Metrics, stage string) *pipeline.Pipeline[T] {
	if metrics == nil {
		return p
	}
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[T] {
		return &meteredIter[T]{source: p.Iter(ctx), metrics: metrics, stage: stage, ctx: ctx}
	})
}

type meteredIter[T any] struct {
	source   pipeline.Iterator[T]
	metrics  *Metrics
	stage    string
	ctx      context.Context
	start    time.Time
	started  bool
	finished bool
}

func (it *meteredIter[T]) Next(ctx context.Context) (T, bool, error) {
	if !it.started {
		it.started = true
		it.start = time.Now()
		it.metrics.TraversalStarted(ctx, it.stage)
	}
	val, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		it.metrics.RecordError(ctx, it.stage, errorCode(err))
		it.finish(ctx, StatusError)
	case !ok:
		it.finish(ctx, StatusOK)
	default:
		it.metrics.RecordElement(ctx, it.stage)
	}
	return val, ok, err
}

func (it *meteredIter[T]) finish(ctx context.Context, status string) {
	if !it.started || it.finished {
		return
	}
	it.finished = true
	it.metrics.TraversalFinished(ctx, it.stage, status, time.Since(it.start))
}

func (it *meteredIter[T]) Close() error {
	it.finish(it.ctx, StatusClosed)
	return it.source.Close()
}

// Traced wraps each traversal of p in a span named SpanTraversal. The span
// starts at the first pull, so upstream stages run inside it, and ends at
// exhaustion, the first error, or Close, whichever comes first.
func Traced[T any](p *pipeline.Pipeline[T], stage string) *pipeline.Pipeline[T] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[T] {
		return &tracedIter[T]{p: p, stage: stage}
	})
}

type tracedIter[T any] struct {
	p        *pipeline.Pipeline[T]
	stage    string
	source   pipeline.Iterator[T]
	spanCtx  context.Context
	span     trace.Span
	elements int
	ended    bool
}

func (it *tracedIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.source == nil {
		it.spanCtx, it.span = StartSpan(ctx, SpanTraversal, trace.WithAttributes(attribute.String(AttrStage, it.stage)))
		it.source = it.p.Iter(it.spanCtx)
	}
	val, ok, err := it.source.Next(it.spanCtx)
	switch {
	case err != nil:
		if !it.ended {
			it.span.RecordError(err)
			it.span.SetStatus(codes.Error, err.Error())
			it.span.SetAttributes(attribute.String(AttrCode, errorCode(err)))
		}
		it.end(StatusError)
	case !ok:
		it.end(StatusOK)
	default:
		it.elements++
	}
	return val, ok, err
}

func (it *tracedIter[T]) end(status string) {
	if it.ended || it.span == nil {
		return
	}
	it.ended = true
	it.span.SetAttributes(
		attribute.Int(AttrElements, it.elements),
		attribute.String(AttrStatus, status),
	)
	it.span.End()
}

func (it *tracedIter[T]) Close() error {
	if it.source == nil {
		return nil
	}
	it.end(StatusClosed)
	return it.source.Close()
}
