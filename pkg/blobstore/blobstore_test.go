package blobstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	cfg := config.NewForTest()
	cfg.BlobLocalDir = t.TempDir()
	cfg.BlobPublicURL = "http://example.test/"
	store, err := NewLocalStore(cfg)
	require.NoError(t, err)
	return store
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	u, err := store.Put(ctx, "abc", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "memory://abc", u)

	signed, err := store.SignedGetURL(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "memory://abc?expires="))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.SignedGetURL(ctx, "abc", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"abc"}, store.Puts())
	assert.Equal(t, []string{"abc"}, store.Deletes())
}

func TestLocalStore_SignedURLRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestLocalStore(t)

	u, err := store.Put(ctx, "cover1", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/blobs/cover1", u)

	signed, err := store.SignedGetURL(ctx, "cover1", time.Hour)
	require.NoError(t, err)
	parsed, err := url.Parse(signed)
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, store)

	req := httptest.NewRequest(http.MethodGet, parsed.RequestURI(), nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "jpeg-bytes", rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/blobs/cover1?token=bogus", nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestLocalStore_ExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestLocalStore(t)

	_, err := store.Put(ctx, "k", []byte("x"), "text/plain")
	require.NoError(t, err)
	signed, err := store.SignedGetURL(ctx, "k", -time.Minute)
	require.NoError(t, err)
	parsed, err := url.Parse(signed)
	require.NoError(t, err)

	_, _, err = store.open("k", parsed.Query().Get("token"))
	assert.Error(t, err)
}

func TestLocalStore_DeleteMissingAndInvalidKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestLocalStore(t)

	assert.NoError(t, store.Delete(ctx, "never-written"))
	_, err := store.Put(ctx, "../escape", []byte("x"), "text/plain")
	assert.Error(t, err)
	_, err = store.SignedGetURL(ctx, "missing", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("transient")
	}
	return s.MemoryStore.Delete(ctx, key)
}

func constantBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
}

func TestRetryingStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recovers from transient failures", func(t *testing.T) {
		t.Parallel()
		inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
		store := NewRetryingStoreWithBackoff(inner, constantBackoff)
		require.NoError(t, store.Delete(ctx, "k"))
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("gives up after the budget", func(t *testing.T) {
		t.Parallel()
		inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 10}
		store := NewRetryingStoreWithBackoff(inner, constantBackoff)
		assert.Error(t, store.Delete(ctx, "k"))
		assert.Equal(t, 4, inner.calls)
	})
}

func TestObservedStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	observer, err := NewObserver("test", reg)
	require.NoError(t, err)
	// Registering twice reuses the existing collectors.
	again, err := NewObserver("test", reg)
	require.NoError(t, err)
	assert.Same(t, observer.uploadBytes, again.uploadBytes)

	inner := NewMemoryStore()
	store := NewObservedStore(inner, observer)

	_, err = store.Put(ctx, "a", []byte("12345"), "text/plain")
	require.NoError(t, err)
	inner.FailDeletes(errors.New("boom"))
	assert.Error(t, store.Delete(ctx, "a"))

	assert.InDelta(t, 5, testutil.ToFloat64(observer.uploadBytes), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(observer.errors.WithLabelValues("delete")), 0.001)
	assert.InDelta(t, 0, testutil.ToFloat64(observer.errors.WithLabelValues("put")), 0.001)
}

func TestNewAndLocalFrom(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	cfg.BlobLocalDir = t.TempDir()
	cfg.BlobDriver = config.BlobDriverLocal

	store, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	_, ok := store.(*ObservedStore)
	assert.True(t, ok)
	local, ok := LocalFrom(store)
	assert.True(t, ok)
	assert.NotNil(t, local)

	_, ok = LocalFrom(NewMemoryStore())
	assert.False(t, ok)
}
