// Package blobstore stores uploaded files and issues time-limited URLs for
// reading them back.
package blobstore

import (
	"context"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob not found")

// Store is an object store addressed by key.
type Store interface {
	// Put stores data under key and returns the object's URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// SignedGetURL returns a URL that grants read access to key for ttl.
	SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New builds the store selected by cfg. Remote stores are wrapped with
// bounded retries, and every store reports metrics to reg when it is non-nil.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (Store, error) {
	var store Store
	switch cfg.BlobDriver {
	case config.BlobDriverS3:
		s3Store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		store = NewRetryingStore(s3Store, cfg.BlobRetryMaxElapsed)
	case config.BlobDriverMemory:
		store = NewMemoryStore()
	default:
		localStore, err := NewLocalStore(cfg)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		store = localStore
	}

	if reg == nil {
		return store, nil
	}
	observer, err := NewObserver("blob_store", reg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewObservedStore(store, observer), nil
}

// LocalFrom returns the LocalStore behind store, if there is one.
func LocalFrom(store Store) (*LocalStore, bool) {
	for {
		switch s := store.(type) {
		case *LocalStore:
			return s, true
		case *ObservedStore:
			store = s.delegate
		case *RetryingStore:
			store = s.delegate
		default:
			return nil, false
		}
	}
}
