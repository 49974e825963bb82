// This package provides a set of minimal interfaces which both build on and
// are by default backed by go-metrics. We wrap go-metrics so callers only see
// the handful of instruments the scheduler and driver record, and so a
// StatsReceiver can be passed down a call tree and scoped at each level.
//
// Original license: github.com/rcrowley/go-metrics/blob/master/LICENSE
//
package stats

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// Number of samples kept by each latency histogram.
const latencySampleSize = 1028

//
// A registry wrapper for metrics that will be collected about the runtime
// performance of an application.
//
// Hierarchical names are stored using a '/' path separator. Slashes inside a
// name element are replaced by "_SLASH_" rather than failing, since names are
// sometimes generated from test ids.
//
type StatsReceiver interface {
	// Return a stats receiver that will automatically namespace elements with
	// the given scope args.
	//
	//   statsReceiver.Scope("foo", "bar").Counter("baz")  // is equivalent to
	//   statsReceiver.Counter("foo", "bar", "baz")
	//
	Scope(scope ...string) StatsReceiver

	// Returns a copy whose Latency instruments record in units of the given precision.
	Precision(time.Duration) StatsReceiver

	// Provides an event counter
	Counter(name ...string) Counter

	// Add a gauge, which holds an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Provides a histogram of elapsed times, see Precision().
	Latency(name ...string) Latency

	// Construct a JSON string by marshaling the registry.
	Render(pretty bool) []byte
}

type Counter interface {
	Inc(int64)
	Count() int64
}

type Gauge interface {
	Update(int64)
	Value() int64
}

// Latency records how long a call site took.
//
//   defer stat.Latency("consumeLatency_ms").Time().Stop()
type Latency interface {
	Time() Latency
	Stop()
	Count() int64
}

// DefaultStatsReceiver is a small wrapper around a fresh go-metrics registry.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{
		registry:  metrics.NewRegistry(),
		precision: time.Millisecond,
	}
}

type defaultStatsReceiver struct {
	registry  metrics.Registry
	scope     []string
	precision time.Duration
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.scoped(scope...), s.precision}
}

func (s *defaultStatsReceiver) Precision(precision time.Duration) StatsReceiver {
	if precision < 1 {
		precision = 1
	}
	return &defaultStatsReceiver{s.registry, s.scope, precision}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewCounter).(metrics.Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewGauge).(metrics.Gauge)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	h := s.registry.GetOrRegister(s.scopedName(name...), func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewUniformSample(latencySampleSize))
	}).(metrics.Histogram)
	return &metricLatency{Histogram: h, precision: s.precision}
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	var bytes []byte
	var err error
	if pretty {
		bytes, err = json.MarshalIndent(s.registry.GetAll(), "", "  ")
	} else {
		bytes, err = json.Marshal(s.registry.GetAll())
	}
	if err != nil {
		log.Errorf("StatsRegistry bug, cannot be marshaled: %v", err)
		return []byte{}
	}
	return bytes
}

// Append to existing scope and scrub slashes
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	r := make([]string, 0, len(s.scope)+len(scope))
	r = append(r, s.scope...)
	for _, e := range scope {
		r = append(r, strings.Replace(e, "/", "_SLASH_", -1))
	}
	return r
}

// Append to the existing scope and convert to slash-delimited string.
func (s *defaultStatsReceiver) scopedName(scope ...string) string {
	return strings.Join(s.scoped(scope...), "/")
}

type metricLatency struct {
	metrics.Histogram
	precision time.Duration
	start     time.Time
}

func (l *metricLatency) Time() Latency {
	return &metricLatency{Histogram: l.Histogram, precision: l.precision, start: time.Now()}
}

func (l *metricLatency) Stop() {
	l.Update(int64(time.Since(l.start) / l.precision))
}

//
// NilStats ignores all stats operations.
//
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver             { return s }
func (s *nilStatsReceiver) Precision(precision time.Duration) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter                  { return metrics.NilCounter{} }
func (s *nilStatsReceiver) Gauge(name ...string) Gauge                      { return metrics.NilGauge{} }
func (s *nilStatsReceiver) Latency(name ...string) Latency                  { return &nilLatency{} }
func (s *nilStatsReceiver) Render(pretty bool) []byte                       { return []byte{} }

type nilLatency struct{}

func (l *nilLatency) Time() Latency { return l }
func (l *nilLatency) Stop()         {}
func (l *nilLatency) Count() int64  { return 0 }
