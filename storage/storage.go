// Package storage keeps food images in an object store addressed by
// relative paths such as "Main_Course/2f1c....png".
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid object path")

// ImageStore uploads and removes objects and maps them to public URLs.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, objectPath string) error
	PathFromURL(publicURL string) (string, bool)
}

// LocalStore writes objects below a directory that the HTTP server exposes
// under /uploads.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root if needed. baseURL is the externally visible
// origin, e.g. "https://admin.example.com".
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.baseURL + "/uploads/" + strings.TrimPrefix(path.Clean("/"+objectPath), "/"), nil
}

func (s *LocalStore) Remove(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// PathFromURL recovers the object path from a URL produced by Upload.
func (s *LocalStore) PathFromURL(publicURL string) (string, bool) {
	idx := strings.Index(publicURL, "/uploads/")
	if idx < 0 {
		return "", false
	}
	p := publicURL[idx+len("/uploads/"):]
	if p == "" {
		return "", false
	}
	return p, true
}
