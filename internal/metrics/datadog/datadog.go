// Package datadog sends run metrics to a DogStatsD agent.
package datadog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"healthetl/internal/metrics"
)

// Config holds the agent address and the tags stamped on every metric.
type Config struct {
	// Addr is "host:port" or "unix:///path/to/dsd.socket".
	Addr      string
	Namespace string
	Tags      []string
}

// Backend implements metrics.Backend over a statsd client.
type Backend struct {
	client statsd.ClientInterface
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend dials the agent described by cfg.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: agent address is required")
	}
	opts := []statsd.Option{statsd.WithTags(cfg.Tags)}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a count. DogStatsD counts are integral, so delta is
// truncated.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush sends buffered metrics to the agent.
func (b *Backend) Flush() error {
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (b *Backend) Close() error { return b.client.Close() }

func tags(l metrics.Labels) []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for k, v := range l {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
