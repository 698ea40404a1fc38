// Package storage persists uploaded images and hands back public links.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage is returned when uploaded bytes are not a recognised image.
var ErrNotImage = errors.New("uploaded file is not an image")

// BlobStore uploads a named binary and returns a publicly viewable URL.
// Delete takes a URL previously returned by Upload.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStore keeps uploads on the local filesystem under root; the HTTP
// layer serves root at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory uploads are written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Upload(_ context.Context, name string, data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	base := sanitizeName(name)
	if filepath.Ext(base) == "" {
		base += mt.Extension()
	}
	fileName := uuid.NewString() + "-" + base

	if err := os.WriteFile(filepath.Join(s.root, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + fileName, nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	fileName := strings.TrimPrefix(url, s.baseURL+"/")
	if fileName == url || fileName != filepath.Base(fileName) || fileName == ".." {
		return fmt.Errorf("blob url %q not served by this store", url)
	}
	if err := os.Remove(filepath.Join(s.root, fileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "upload"
	}
	return base
}
