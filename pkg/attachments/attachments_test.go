package attachments

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/migrations"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func pngFile(t *testing.T, w, h int) *File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &File{Filename: "cover.png", ContentType: "image/png", Data: buf.Bytes()}
}

func pendingKeys(t *testing.T, db *bun.DB) []string {
	t.Helper()
	var pending []*models.PendingBlobDeletion
	require.NoError(t, db.NewSelect().Model(&pending).Order("pbd.blob_key").Scan(context.Background()))
	keys := make([]string, 0, len(pending))
	for _, p := range pending {
		keys = append(keys, p.BlobKey)
	}
	return keys
}

var keyRE = regexp.MustCompile(`^[0-9a-f]{10}[0-9]{6}`)

func TestNewKey(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1717171717123)

	key := NewKey(now, ".pdf")
	assert.Len(t, key, 20)
	assert.True(t, keyRE.MatchString(key), key)
	assert.True(t, strings.HasSuffix(key, "717123.pdf"), key)

	assert.NotEqual(t, NewKey(now, ""), NewKey(now, ""))
	assert.Len(t, NewKey(time.UnixMilli(5), ""), 16)
}

func TestContentType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		file *File
		want string
	}{
		{"pdf by extension", &File{Filename: "a.PDF"}, "application/pdf"},
		{"epub by extension", &File{Filename: "a.epub"}, "application/epub+zip"},
		{"mp3 by extension", &File{Filename: "a.mp3"}, "audio/mpeg"},
		{"declared header", &File{Filename: "a.bin", ContentType: "application/x-custom"}, "application/x-custom"},
		{"sniffed", &File{Filename: "a", ContentType: "application/octet-stream", Data: []byte("%PDF-1.4\n")}, "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ContentType(tt.file))
		})
	}
}

func TestThumbnail(t *testing.T) {
	t.Parallel()
	data, err := Thumbnail(pngFile(t, 400, 300).Data)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	_, err = Thumbnail([]byte("not an image"))
	assert.Error(t, err)
}

func TestBindOnCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	binder := NewBinder(store, setupTestDB(t), time.Hour)

	blob, err := binder.BindOnCreate(ctx, nil, KindImage)
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.Empty(t, store.Puts())

	blob, err = binder.BindOnCreate(ctx, pngFile(t, 50, 50), KindImage)
	require.NoError(t, err)
	assert.Len(t, blob.Key, 16)
	assert.Equal(t, "memory://"+blob.Key, blob.URL)
	obj, ok := store.Object(blob.Key)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", obj.ContentType)

	doc := &File{Filename: "chapter1.mp3", Data: []byte("ID3audio")}
	blob, err = binder.BindOnCreate(ctx, doc, KindDocument)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(blob.Key, ".mp3"))
	obj, _ = store.Object(blob.Key)
	assert.Equal(t, "audio/mpeg", obj.ContentType)
	assert.Equal(t, doc.Data, obj.Data)
}

func TestBindOnUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("one put and one delete even when the delete fails", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		store := blobstore.NewMemoryStore()
		binder := NewBinder(store, db, time.Hour)
		store.FailDeletes(errors.New("unavailable"))

		var persisted string
		blob, err := binder.BindOnUpdate(ctx, "oldkey", pngFile(t, 20, 20), KindImage, func(b *Blob) error {
			persisted = b.Key
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, blob.Key, persisted)
		assert.Equal(t, []string{blob.Key}, store.Puts())
		assert.Equal(t, []string{"oldkey"}, store.Deletes())
		assert.Equal(t, []string{"oldkey"}, pendingKeys(t, db))
	})

	t.Run("no file keeps the old object", func(t *testing.T) {
		t.Parallel()
		store := blobstore.NewMemoryStore()
		binder := NewBinder(store, setupTestDB(t), time.Hour)

		called := false
		blob, err := binder.BindOnUpdate(ctx, "oldkey", nil, KindImage, func(*Blob) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.Nil(t, blob)
		assert.False(t, called)
		assert.Empty(t, store.Puts())
		assert.Empty(t, store.Deletes())
	})

	t.Run("failed persist releases the new object", func(t *testing.T) {
		t.Parallel()
		store := blobstore.NewMemoryStore()
		binder := NewBinder(store, setupTestDB(t), time.Hour)

		_, err := binder.BindOnUpdate(ctx, "oldkey", pngFile(t, 20, 20), KindImage, func(*Blob) error {
			return errors.New("db down")
		})
		require.Error(t, err)
		require.Len(t, store.Puts(), 1)
		assert.Equal(t, store.Puts(), store.Deletes())
	})
}

func TestBindOnDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := blobstore.NewMemoryStore()
	binder := NewBinder(store, db, time.Hour)
	store.FailDeletes(errors.New("unavailable"))

	binder.BindOnDelete(ctx, "a", "", "b")
	assert.Equal(t, []string{"a", "b"}, store.Deletes())
	assert.Equal(t, []string{"a", "b"}, pendingKeys(t, db))

	// A repeated failure does not duplicate the queued deletion.
	binder.BindOnDelete(ctx, "a")
	assert.Equal(t, []string{"a", "b"}, pendingKeys(t, db))
}

type failingStore struct {
	*blobstore.MemoryStore
	failName string
}

func (s *failingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if string(data) == s.failName {
		return "", errors.New("put failed")
	}
	return s.MemoryStore.Put(ctx, key, data, contentType)
}

func TestBindMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("uploads every file", func(t *testing.T) {
		t.Parallel()
		store := blobstore.NewMemoryStore()
		binder := NewBinder(store, setupTestDB(t), time.Hour)

		bound, err := binder.BindMany(ctx, map[string]*File{
			"a": {Filename: "a.pdf", Data: []byte("a")},
			"b": {Filename: "b.epub", Data: []byte("b")},
			"c": nil,
		}, KindDocument)
		require.NoError(t, err)
		assert.Len(t, bound, 2)
		assert.True(t, strings.HasSuffix(bound["a"].Key, ".pdf"))
		assert.True(t, strings.HasSuffix(bound["b"].Key, ".epub"))
	})

	t.Run("releases successful uploads when one fails", func(t *testing.T) {
		t.Parallel()
		mem := blobstore.NewMemoryStore()
		store := &failingStore{MemoryStore: mem, failName: "bad"}
		binder := NewBinder(store, setupTestDB(t), time.Hour)

		_, err := binder.BindMany(ctx, map[string]*File{
			"good": {Filename: "good.pdf", Data: []byte("good")},
			"bad":  {Filename: "bad.pdf", Data: []byte("bad")},
		}, KindDocument)
		require.Error(t, err)
		assert.ElementsMatch(t, mem.Puts(), mem.Deletes())
	})
}

func TestSignedURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	binder := NewBinder(store, nil, time.Hour)

	url, err := binder.SignedURL(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, url)

	_, err = store.Put(ctx, "k", []byte("x"), "text/plain")
	require.NoError(t, err)
	url, err = binder.SignedURL(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, url)
	assert.True(t, strings.HasPrefix(*url, "memory://k?expires="))
}

func TestSweeper(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := blobstore.NewMemoryStore()
	binder := NewBinder(store, db, time.Hour)
	sweeper := NewSweeper(binder)

	store.FailDeletes(errors.New("unavailable"))
	binder.BindOnDelete(ctx, "a", "b")

	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	var pending []*models.PendingBlobDeletion
	require.NoError(t, db.NewSelect().Model(&pending).Scan(ctx))
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "unavailable", pending[0].LastError)

	store.FailDeletes(nil)
	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, pendingKeys(t, db))

	assert.Error(t, sweeper.Start("not a schedule"))
	require.NoError(t, sweeper.Start("*/10 * * * *"))
	sweeper.Stop()
}
