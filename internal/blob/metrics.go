package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for sink operations.
type Observer interface {
	RecordPut(duration time.Duration, sizeBytes int64, err error)
	RecordOpen(duration time.Duration, err error)
}

// PrometheusObserver exports sink metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers put/open metrics under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "tubely_blob"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	observer := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency for blob sink operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of blob sink failures.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully written to the sink.",
		}),
	}
	if err := register(reg, observer.duration, &observer.duration); err != nil {
		return nil, err
	}
	if err := register(reg, observer.errors, &observer.errors); err != nil {
		return nil, err
	}
	if err := register(reg, observer.uploadBytes, &observer.uploadBytes); err != nil {
		return nil, err
	}
	return observer, nil
}

// register adopts an already registered collector of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, target *T) error {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				*target = existing
				return nil
			}
		}
		return fmt.Errorf("register blob metric: %w", err)
	}
	return nil
}

// RecordPut tracks upload duration, size, and failures.
func (o *PrometheusObserver) RecordPut(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("put").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("put").Inc()
		return
	}
	if sizeBytes > 0 {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordOpen(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("open").Observe(duration.Seconds())
	if err != nil && !errors.Is(err, ErrObjectNotFound) {
		o.errors.WithLabelValues("open").Inc()
	}
}

// Instrumented wraps a Sink and reports every operation to an Observer.
type Instrumented struct {
	Sink
	observer Observer
}

// Instrument decorates sink. A nil observer returns sink unchanged.
func Instrument(sink Sink, observer Observer) Sink {
	if observer == nil {
		return sink
	}
	return &Instrumented{Sink: sink, observer: observer}
}

// Put forwards seekable bodies untouched so uploaders can read spooled files
// directly; their byte count is taken from size.
func (i *Instrumented) Put(ctx context.Context, key, mediaType string, body io.Reader, size int64) (string, error) {
	start := time.Now()
	if _, seekable := body.(io.ReadSeeker); seekable && size >= 0 {
		url, err := i.Sink.Put(ctx, key, mediaType, body, size)
		i.observer.RecordPut(time.Since(start), size, err)
		return url, err
	}
	counter := &countingReader{r: body}
	url, err := i.Sink.Put(ctx, key, mediaType, counter, size)
	i.observer.RecordPut(time.Since(start), counter.n, err)
	return url, err
}

func (i *Instrumented) Open(ctx context.Context, key string) (*Object, error) {
	start := time.Now()
	obj, err := i.Sink.Open(ctx, key)
	i.observer.RecordOpen(time.Since(start), err)
	return obj, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
