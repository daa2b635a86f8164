package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// BlobStore keeps attachment bytes and hands back a retrieval URL.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// DiskBlobStore stores files under a directory served at URLPrefix.
type DiskBlobStore struct {
	fs        afero.Fs
	urlPrefix string
	maxBytes  int64
}

// NewDiskBlobStore stores files in dir. maxBytes <= 0 means no limit.
func NewDiskBlobStore(dir, urlPrefix string, maxBytes int64) *DiskBlobStore {
	return newBlobStore(afero.NewBasePathFs(afero.NewOsFs(), dir), urlPrefix, maxBytes)
}

func newBlobStore(fs afero.Fs, urlPrefix string, maxBytes int64) *DiskBlobStore {
	return &DiskBlobStore{fs: fs, urlPrefix: strings.TrimRight(urlPrefix, "/"), maxBytes: maxBytes}
}

// Put writes r under a random key that keeps the file extension of name.
func (b *DiskBlobStore) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	key := uuid.NewString() + strings.ToLower(path.Ext(path.Base(name)))

	if err := b.fs.MkdirAll("/", 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := b.fs.Create("/" + key)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}

	src := r
	if b.maxBytes > 0 {
		src = io.LimitReader(r, b.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && b.maxBytes > 0 && n > b.maxBytes {
		err = fieldError("file", fmt.Sprintf("must not exceed %d bytes", b.maxBytes))
	}
	if err != nil {
		_ = b.fs.Remove("/" + key)
		if _, ok := AsError(err); ok {
			return "", err
		}
		return "", fmt.Errorf("write blob: %w", err)
	}
	return b.urlPrefix + "/" + key, nil
}

// Delete removes the file behind url. Unknown URLs are ignored.
func (b *DiskBlobStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, b.urlPrefix+"/")
	if !ok || key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return nil
	}
	if err := b.fs.Remove("/" + key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
