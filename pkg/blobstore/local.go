package blobstore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/pkg/errors"
)

// LocalStore keeps objects in a directory and serves them through signed
// URLs handled by RegisterRoutes.
type LocalStore struct {
	dir       string
	publicURL string
	secret    []byte
}

type blobClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

func NewLocalStore(cfg *config.Config) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.BlobLocalDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create blob directory: %s", cfg.BlobLocalDir)
	}
	return &LocalStore{
		dir:       cfg.BlobLocalDir,
		publicURL: strings.TrimRight(cfg.BlobPublicURL, "/"),
		secret:    []byte(cfg.JWTSecret),
	}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.WriteFile(path+".type", []byte(contentType), 0644); err != nil {
		return "", errors.WithStack(err)
	}
	return s.publicURL + "/blobs/" + url.PathEscape(key), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	if err := os.Remove(path + ".type"); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

func (s *LocalStore) SignedGetURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.WithStack(ErrNotFound)
		}
		return "", errors.WithStack(err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, blobClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return s.publicURL + "/blobs/" + url.PathEscape(key) + "?token=" + url.QueryEscape(signed), nil
}

// open validates a signed URL token for key and returns the object's path
// and content type.
func (s *LocalStore) open(key, token string) (string, string, error) {
	claims := &blobClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Key != key {
		return "", "", errors.New("invalid blob token")
	}
	path, err := s.path(key)
	if err != nil {
		return "", "", err
	}
	contentType, err := os.ReadFile(path + ".type")
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", errors.WithStack(ErrNotFound)
		}
		return "", "", errors.WithStack(err)
	}
	return path, string(contentType), nil
}
