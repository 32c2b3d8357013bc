package logger

import (
	"sync"
	"time"
)

// QueryRun is the outcome of one executed query.
type QueryRun struct {
	Name     string
	Elements int
	Duration time.Duration
	Status   string // "ok", "empty", "error"
	Err      error
}

// RunRegistry collects query outcomes for a summary at the end of a run.
type RunRegistry struct {
	mu        sync.Mutex
	startTime time.Time
	runs      []QueryRun
}

// NewRunRegistry creates an empty registry whose clock starts now.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{startTime: time.Now()}
}

// StartTime returns the registry creation time.
func (r *RunRegistry) StartTime() time.Time {
	return r.startTime
}

// Record stores the outcome of a query. Status is derived from err and
// elements.
func (r *RunRegistry) Record(name string, elements int, d time.Duration, err error) {
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case elements == 0:
		status = "empty"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, QueryRun{Name: name, Elements: elements, Duration: d, Status: status, Err: err})
}

// Runs returns a copy of the recorded outcomes in recording order.
func (r *RunRegistry) Runs() []QueryRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]QueryRun, len(r.runs))
	copy(out, r.runs)
	return out
}

// Failed returns the number of recorded queries that ended in error.
func (r *RunRegistry) Failed() int {
	n := 0
	for _, run := range r.Runs() {
		if run.Status == "error" {
			n++
		}
	}
	return n
}

// LogSummary writes one line per query followed by a totals line.
func (r *RunRegistry) LogSummary(l *Logger) {
	runs := r.Runs()
	for _, run := range runs {
		fields := Fields(FieldQuery, run.Name, FieldElements, run.Elements, FieldStatus, run.Status)
		fields = MergeWithDuration(fields, run.Duration)
		if run.Err != nil {
			l.Warn("query finished", MergeWithError(fields, run.Err))
			continue
		}
		l.Info("query finished", fields)
	}
	l.Info("run complete", MergeWithDuration(Fields("queries", len(runs), "failed", r.Failed()), time.Since(r.startTime)))
}
