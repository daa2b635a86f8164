package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskBlobStore_PutDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := newBlobStore(fs, "/uploads/", 1024)
	ctx := context.Background()

	url, err := b.Put(ctx, "Invoice.PDF", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	key := strings.TrimPrefix(url, "/uploads")
	data, err := afero.ReadFile(fs, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, b.Delete(ctx, url))
	exists, _ := afero.Exists(fs, key)
	assert.False(t, exists)

	// already gone, foreign and traversal urls are ignored
	assert.NoError(t, b.Delete(ctx, url))
	assert.NoError(t, b.Delete(ctx, "https://elsewhere/x.pdf"))
	assert.NoError(t, b.Delete(ctx, "/uploads/../config.yaml"))
}

func TestDiskBlobStore_TooLarge(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := newBlobStore(fs, "/uploads", 4)

	_, err := b.Put(context.Background(), "big.txt", "text/plain", strings.NewReader("12345"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	files, _ := afero.ReadDir(fs, "/")
	assert.Empty(t, files)
}
