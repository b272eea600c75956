// Package metrics records operational counters and durations of a run.
//
// Components receive a *Recorder; nothing is global. A Recorder forwards to
// a Backend (Pushgateway in production, a fake in tests) and defaults to a
// no-op backend so calls are always safe.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal    = "etl_step_total"
	StepDuration = "etl_step_duration_seconds"
	RecordsTotal = "etl_records_total"
	BatchesTotal = "etl_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system implements.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// Recorder binds a Backend to a job name.
type Recorder struct {
	job     string
	backend Backend
}

// NewRecorder returns a Recorder for job. A nil backend records nothing.
func NewRecorder(job string, b Backend) *Recorder {
	if b == nil {
		b = nopBackend{}
	}
	return &Recorder{job: job, backend: b}
}

// Nop returns a Recorder that discards everything.
func Nop() *Recorder { return NewRecorder("", nil) }

// Step records one execution of a named step with its outcome and latency.
func (r *Recorder) Step(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": r.job, "step": step, "status": status}
	r.backend.IncCounter(StepTotal, 1, lbls)
	r.backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Rows adds delta to the record counter of kind (read, parse_warnings,
// duplicates, imputed, repaired, written). Non-positive deltas are ignored.
func (r *Recorder) Rows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	r.backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": r.job, "kind": kind})
}

// Batches adds delta to the batch counter.
func (r *Recorder) Batches(delta int64) {
	if delta <= 0 {
		return
	}
	r.backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": r.job})
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error { return r.backend.Flush() }
