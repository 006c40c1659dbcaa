package blobstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports blob store metrics to Prometheus.
type Observer struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewObserver registers the blob store metrics under namespace, reusing
// collectors that are already registered.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of blob store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed blob store operations.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully written to the blob store.",
		}),
	}

	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.errors, err = register(reg, o.errors); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.Wrap(err, "register blob store metric")
	}
	return c, nil
}

func (o *Observer) record(op string, start time.Time, err error) {
	o.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

// ObservedStore records the latency and failures of every call.
type ObservedStore struct {
	delegate Store
	observer *Observer
}

func NewObservedStore(delegate Store, observer *Observer) *ObservedStore {
	return &ObservedStore{delegate: delegate, observer: observer}
}

func (s *ObservedStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	url, err := s.delegate.Put(ctx, key, data, contentType)
	s.observer.record("put", start, err)
	if err == nil {
		s.observer.uploadBytes.Add(float64(len(data)))
	}
	return url, err
}

func (s *ObservedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.delegate.Delete(ctx, key)
	s.observer.record("delete", start, err)
	return err
}

func (s *ObservedStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	start := time.Now()
	url, err := s.delegate.SignedGetURL(ctx, key, ttl)
	s.observer.record("sign", start, err)
	return url, err
}

// Unwrap returns the store the observer wraps.
func (s *ObservedStore) Unwrap() Store {
	return s.delegate
}
