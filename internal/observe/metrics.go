// Package observe provides application-wide observability primitives for
// AIMeet: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all AIMeet metrics.
const meterName = "github.com/aimeet/aimeet"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use. The convenience methods tolerate a
// nil receiver so callers can leave instrumentation unconfigured.
type Metrics struct {
	// GenerationDuration tracks LLM minutes generation latency. Use with
	// attributes:
	//   attribute.String("template", ...), attribute.String("status", ...)
	GenerationDuration metric.Float64Histogram

	// TranscriptionDuration tracks audio transcription latency.
	TranscriptionDuration metric.Float64Histogram

	// BotWaitDuration tracks how long bots take to finish a meeting. Buckets
	// range up to hours since a bot stays for the whole call.
	BotWaitDuration metric.Float64Histogram

	// ProviderRequests counts outbound provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts outbound provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// MeetingsProcessed counts pipeline completions. Use with attributes:
	//   attribute.String("source", ...), attribute.String("status", ...)
	MeetingsProcessed metric.Int64Counter

	// Distributions counts minutes deliveries. Use with attributes:
	//   attribute.String("target", ...), attribute.String("status", ...)
	Distributions metric.Int64Counter

	// ActiveWaits tracks the number of bots currently being waited on.
	ActiveWaits metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for API
// and generation latencies.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// waitBuckets covers bot waits, which last as long as the meeting itself.
var waitBuckets = []float64{
	30, 60, 300, 600, 1200, 1800, 3600, 7200,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.GenerationDuration, err = m.Float64Histogram("aimeet.generation.duration",
		metric.WithDescription("Latency of LLM minutes generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("aimeet.transcription.duration",
		metric.WithDescription("Latency of audio transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BotWaitDuration, err = m.Float64Histogram("aimeet.bot.wait.duration",
		metric.WithDescription("Time spent waiting for a recording bot to finish."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(waitBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("aimeet.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("aimeet.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.MeetingsProcessed, err = m.Int64Counter("aimeet.meetings.processed",
		metric.WithDescription("Total meetings processed by transcript source and status."),
	); err != nil {
		return nil, err
	}
	if met.Distributions, err = m.Int64Counter("aimeet.distributions",
		metric.WithDescription("Total minutes deliveries by target and status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveWaits, err = m.Int64UpDownCounter("aimeet.active_waits",
		metric.WithDescription("Number of recording bots currently being waited on."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("aimeet.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// statusAttr maps an error to the conventional status attribute value.
func statusAttr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveGeneration records one minutes generation attempt.
func (m *Metrics) ObserveGeneration(ctx context.Context, template string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.GenerationDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("template", template),
			attribute.String("status", statusAttr(err)),
		),
	)
}

// ObserveTranscription records one audio transcription attempt.
func (m *Metrics) ObserveTranscription(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.TranscriptionDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("status", statusAttr(err))),
	)
}

// ObserveDistribution records one minutes delivery attempt.
func (m *Metrics) ObserveDistribution(ctx context.Context, target string, err error) {
	if m == nil {
		return
	}
	m.Distributions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("target", target),
			attribute.String("status", statusAttr(err)),
		),
	)
}

// RecordMeetingProcessed records one pipeline completion.
func (m *Metrics) RecordMeetingProcessed(ctx context.Context, source string, err error) {
	if m == nil {
		return
	}
	m.MeetingsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("status", statusAttr(err)),
		),
	)
}

// RecordProviderRequest records a provider request counter increment with
// the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	if m == nil {
		return
	}
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// WaitStarted marks one more bot wait in flight.
func (m *Metrics) WaitStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveWaits.Add(ctx, 1)
}

// WaitFinished marks one bot wait as done.
func (m *Metrics) WaitFinished(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveWaits.Add(ctx, -1)
}
