package blobstore

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingStore retries transient failures of the wrapped store with a
// bounded exponential backoff.
type RetryingStore struct {
	delegate     Store
	buildBackoff func() backoff.BackOff
}

// NewRetryingStore gives up on an operation once maxElapsed has passed.
func NewRetryingStore(delegate Store, maxElapsed time.Duration) *RetryingStore {
	return NewRetryingStoreWithBackoff(delegate, func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 100 * time.Millisecond
		b.MaxElapsedTime = maxElapsed
		return b
	})
}

func NewRetryingStoreWithBackoff(delegate Store, factory func() backoff.BackOff) *RetryingStore {
	return &RetryingStore{delegate: delegate, buildBackoff: factory}
}

func (s *RetryingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	var url string
	err := s.retry(ctx, func() error {
		var err error
		url, err = s.delegate.Put(ctx, key, data, contentType)
		return err
	})
	return url, err
}

func (s *RetryingStore) Delete(ctx context.Context, key string) error {
	return s.retry(ctx, func() error { return s.delegate.Delete(ctx, key) })
}

func (s *RetryingStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.delegate.SignedGetURL(ctx, key, ttl)
}

func (s *RetryingStore) retry(ctx context.Context, fn func() error) error {
	return backoff.Retry(fn, backoff.WithContext(s.buildBackoff(), ctx))
}

var _ Store = (*RetryingStore)(nil)
