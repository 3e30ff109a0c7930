// Package otel provides OpenTelemetry metrics for conhashmap maps.
//
// It is a separate module so the core conhashmap package carries no
// OpenTelemetry dependency for callers who don't want one. A Collector
// polls a map's Stats() on every OTEL collection cycle and republishes
// the cumulative counters as OTEL asynchronous instruments — there is no
// per-operation hook into the hot Get/Set/Remove path, matching how
// conhashmap.Stats is itself a point-in-time snapshot rather than an
// event stream.
//
// # Quick Start
//
//	m := conhashmap.NewRemovable[string, int](64, khash.String)
//	collector, err := conhashmapotel.NewCollector(provider, m)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer collector.Close()
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"github.com/kolkov/conhashmap"
)

// StatsProvider is satisfied by *conhashmap.AppendOnlyMap[K, V] and
// *conhashmap.RemovableMap[K, V] for any K, V.
type StatsProvider interface {
	Stats() conhashmap.Stats
}

// Options configures a Collector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/kolkov/conhashmap"
	MeterName string
}

// Option is a functional option for configuring a Collector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple map instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// Collector republishes a map's Stats snapshot as OTEL metrics.
//
// Metrics exposed:
//
//   - conhashmap_hits_total: cumulative Get hits
//   - conhashmap_misses_total: cumulative Get misses
//   - conhashmap_sets_total: cumulative Set calls
//   - conhashmap_set_if_absent_total: cumulative SetIfAbsent calls
//   - conhashmap_removes_total: cumulative successful Remove calls (RemovableMap only)
//   - conhashmap_reclaimed_total: nodes reclaimed by deferred GC (RemovableMap only)
//
// All six are observable counters backed by the same callback, so a
// single collection cycle reads Stats() exactly once.
type Collector struct {
	reg metric.Registration
}

// NewCollector creates a Collector that reads source.Stats() on every
// collection cycle of provider's registered readers. Neither argument
// may be nil.
func NewCollector(provider metric.MeterProvider, source StatsProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, errors.New("conhashmap/otel: meter provider must not be nil")
	}
	if source == nil {
		return nil, errors.New("conhashmap/otel: stats source must not be nil")
	}

	options := Options{MeterName: "github.com/kolkov/conhashmap"}
	for _, opt := range opts {
		opt(&options)
	}
	meter := provider.Meter(options.MeterName)

	hits, err := meter.Int64ObservableCounter(
		"conhashmap_hits_total",
		metric.WithDescription("Cumulative Get calls that found a live entry"),
	)
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64ObservableCounter(
		"conhashmap_misses_total",
		metric.WithDescription("Cumulative Get calls that found no entry"),
	)
	if err != nil {
		return nil, err
	}
	sets, err := meter.Int64ObservableCounter(
		"conhashmap_sets_total",
		metric.WithDescription("Cumulative Set calls"),
	)
	if err != nil {
		return nil, err
	}
	setAbsent, err := meter.Int64ObservableCounter(
		"conhashmap_set_if_absent_total",
		metric.WithDescription("Cumulative SetIfAbsent calls"),
	)
	if err != nil {
		return nil, err
	}
	removes, err := meter.Int64ObservableCounter(
		"conhashmap_removes_total",
		metric.WithDescription("Cumulative successful Remove calls"),
	)
	if err != nil {
		return nil, err
	}
	reclaimed, err := meter.Int64ObservableCounter(
		"conhashmap_reclaimed_total",
		metric.WithDescription("Cumulative nodes reclaimed by deferred garbage collection"),
	)
	if err != nil {
		return nil, err
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := source.Stats()
		o.ObserveInt64(hits, int64(st.Hits))
		o.ObserveInt64(misses, int64(st.Misses))
		o.ObserveInt64(sets, int64(st.Sets))
		o.ObserveInt64(setAbsent, int64(st.SetIfAbsent))
		o.ObserveInt64(removes, int64(st.Removes))
		o.ObserveInt64(reclaimed, int64(st.Reclaimed))
		return nil
	}, hits, misses, sets, setAbsent, removes, reclaimed)
	if err != nil {
		return nil, err
	}

	return &Collector{reg: reg}, nil
}

// Close unregisters the collector's callback. The map itself is
// untouched and remains usable.
func (c *Collector) Close() error {
	return c.reg.Unregister()
}
