package attachments

import (
	"context"
	"sync"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// Blob is a stored object bound to an entity.
type Blob struct {
	Key string
	URL string
}

// Binder uploads files for entities and releases the objects they no longer
// reference.
type Binder struct {
	store blobstore.Store
	db    *bun.DB
	ttl   time.Duration
	now   func() time.Time
}

func NewBinder(store blobstore.Store, db *bun.DB, signedURLTTL time.Duration) *Binder {
	return &Binder{store: store, db: db, ttl: signedURLTTL, now: time.Now}
}

// BindOnCreate uploads f. A nil file yields a nil blob.
func (b *Binder) BindOnCreate(ctx context.Context, f *File, kind Kind) (*Blob, error) {
	if f == nil {
		return nil, nil
	}
	key, data, contentType, err := prepare(f, kind, b.now())
	if err != nil {
		return nil, err
	}
	url, err := b.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload file")
	}
	return &Blob{Key: key, URL: url}, nil
}

// BindOnUpdate replaces the object at oldKey with f. The new object is
// uploaded and handed to apply, which persists it; once apply succeeds the
// old object is released. If apply fails the new object is released instead.
// A nil file leaves the old object in place and skips apply.
func (b *Binder) BindOnUpdate(ctx context.Context, oldKey string, f *File, kind Kind, apply func(*Blob) error) (*Blob, error) {
	if f == nil {
		return nil, nil
	}
	blob, err := b.BindOnCreate(ctx, f, kind)
	if err != nil {
		return nil, err
	}
	if err := apply(blob); err != nil {
		b.release(ctx, blob.Key)
		return nil, err
	}
	if oldKey != "" {
		b.release(ctx, oldKey)
	}
	return blob, nil
}

// BindOnDelete releases the objects bound to a deleted entity. Failures are
// logged and queued for the sweeper, never returned.
func (b *Binder) BindOnDelete(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key != "" {
			b.release(ctx, key)
		}
	}
}

// BindMany uploads every file in parallel. Either all of them are stored or
// none are: on failure the uploads that did succeed are released.
func (b *Binder) BindMany(ctx context.Context, files map[string]*File, kind Kind) (map[string]Blob, error) {
	var mu sync.Mutex
	bound := make(map[string]Blob, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for name, f := range files {
		if f == nil {
			continue
		}
		g.Go(func() error {
			blob, err := b.BindOnCreate(gctx, f, kind)
			if err != nil {
				return errors.Wrapf(err, "failed to upload %s", name)
			}
			mu.Lock()
			bound[name] = *blob
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, blob := range bound {
			b.release(ctx, blob.Key)
		}
		return nil, err
	}
	return bound, nil
}

// Release frees objects that were uploaded but never persisted.
func (b *Binder) Release(ctx context.Context, blobs ...Blob) {
	for _, blob := range blobs {
		b.release(ctx, blob.Key)
	}
}

// SignedURL returns a fresh read URL for key, or nil when key is empty.
func (b *Binder) SignedURL(ctx context.Context, key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	url, err := b.store.SignedGetURL(ctx, key, b.ttl)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &url, nil
}

func (b *Binder) release(ctx context.Context, key string) {
	ctx = context.WithoutCancel(ctx)
	err := b.store.Delete(ctx, key)
	if err == nil {
		return
	}
	log := logger.FromContext(ctx)
	log.Warn("failed to delete blob", logger.Data{"blob_key": key, "error": err.Error()})
	if qerr := b.queueDeletion(ctx, key, err); qerr != nil {
		log.Err(qerr).Error("failed to queue blob deletion", logger.Data{"blob_key": key})
	}
}

func (b *Binder) queueDeletion(ctx context.Context, key string, cause error) error {
	if b.db == nil {
		return nil
	}
	now := b.now()
	pending := &models.PendingBlobDeletion{
		ID:        models.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		BlobKey:   key,
		LastError: cause.Error(),
	}
	_, err := b.db.NewInsert().
		Model(pending).
		On("CONFLICT (blob_key) DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

// KeyOf dereferences an optional stored key. A nil key is empty.
func KeyOf(key *string) string {
	if key == nil {
		return ""
	}
	return *key
}
