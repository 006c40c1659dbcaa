// Package attachments binds uploaded files to the lifetime of the entity
// that references them.
package attachments

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

type Kind int

const (
	// KindImage files are stored as a 200x200 JPEG thumbnail.
	KindImage Kind = iota
	// KindDocument files are stored unchanged under a key that keeps their
	// extension.
	KindDocument
)

const thumbnailSize = 200

// File is an uploaded file held in memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadFile loads a multipart upload. A nil header yields a nil file.
func ReadFile(fh *multipart.FileHeader) (*File, error) {
	if fh == nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ReadFiles loads every upload in headers, keyed the same way.
func ReadFiles(headers map[string]*multipart.FileHeader) (map[string]*File, error) {
	files := make(map[string]*File, len(headers))
	for name, fh := range headers {
		f, err := ReadFile(fh)
		if err != nil {
			return nil, err
		}
		files[name] = f
	}
	return files, nil
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".epub": "application/epub+zip",
	".mp3":  "audio/mpeg",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ContentType resolves the content type of a document from its extension,
// then its declared header, then its bytes.
func ContentType(f *File) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(f.Filename))]; ok {
		return ct
	}
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	return mimetype.Detect(f.Data).String()
}

// NewKey returns a collision-resistant object key: ten characters of a
// random id followed by the last six digits of the millisecond clock.
func NewKey(now time.Time, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	ts := fmt.Sprintf("%06d", now.UnixMilli()%1000000)
	return id[:10] + ts + ext
}

// prepare returns the key, bytes and content type to store for f.
func prepare(f *File, kind Kind, now time.Time) (string, []byte, string, error) {
	if kind == KindImage {
		data, err := Thumbnail(f.Data)
		if err != nil {
			return "", nil, "", err
		}
		return NewKey(now, ""), data, "image/jpeg", nil
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	return NewKey(now, ext), f.Data, ContentType(f), nil
}

// Thumbnail scales and center-crops an image to fill a 200x200 square and
// encodes it as JPEG.
func Thumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		mtype := mimetype.Detect(data)
		return nil, errors.Wrapf(err, "failed to decode image (%s)", mtype.String())
	}

	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side == 0 {
		return nil, errors.New("image has no pixels")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
