package media

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollcast/backend/internal/models"
)

type fakeCreator struct {
	created *models.Attachment
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, a *models.Attachment) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	a.ID = 77
	f.created = a
	return a.ID, nil
}

func TestStoreWritesFileAndRegistersAttachment(t *testing.T) {
	dir := t.TempDir()
	creator := &fakeCreator{}
	in := NewIngestor(dir, "https://example.com/", creator, nil, false, nil)

	data := []byte("video-bytes")
	stored, err := in.Store(context.Background(), data, "https://example.com/page", IngestOptions{
		PostID:    3,
		Title:     "My Landing Page!",
		DeviceKey: "mobile_iphone_xr",
		Duration:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(77), stored.AttachmentID)
	assert.Equal(t, int64(len(data)), stored.FileSize)

	onDisk, err := os.ReadFile(stored.FilePath)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
	assert.Equal(t, filepath.Join(dir, "screen-recordings"), filepath.Dir(stored.FilePath))

	name := filepath.Base(stored.FilePath)
	assert.True(t, strings.HasPrefix(name, "my-landing-page_mobile_iphone_xr_"), name)
	assert.True(t, strings.HasSuffix(name, ".mp4"), name)

	assert.True(t, strings.HasPrefix(stored.FileURL, "https://example.com/uploads/screen-recordings/"), stored.FileURL)

	require.NotNil(t, creator.created)
	assert.Equal(t, int64(3), creator.created.PostID)
	assert.Equal(t, "video/mp4", creator.created.MimeType)
	var meta models.AttachmentMetadata
	require.NoError(t, json.Unmarshal(creator.created.Metadata, &meta))
	assert.Equal(t, "https://example.com/page", meta.SourceURL)
	assert.Equal(t, "mobile_iphone_xr", meta.DeviceKey)
	assert.Equal(t, 5, meta.Duration)
}

func TestStoreFallbackFilename(t *testing.T) {
	dir := t.TempDir()
	in := NewIngestor(dir, "https://example.com", &fakeCreator{}, nil, false, nil)

	stored, err := in.Store(context.Background(), []byte("x"), "https://example.com", IngestOptions{})
	require.NoError(t, err)

	name := filepath.Base(stored.FilePath)
	assert.True(t, strings.HasPrefix(name, "page_scroll_"), name)
}

func TestStoreRegisterFailure(t *testing.T) {
	dir := t.TempDir()
	in := NewIngestor(dir, "https://example.com", &fakeCreator{err: errors.New("db down")}, nil, false, nil)

	_, err := in.Store(context.Background(), []byte("x"), "https://example.com", IngestOptions{})
	assert.ErrorIs(t, err, ErrRegister)
}

func TestStoreUploadDirFailure(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the subdirectory should go
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screen-recordings"), []byte("x"), 0o644))
	in := NewIngestor(dir, "https://example.com", &fakeCreator{}, nil, false, nil)

	_, err := in.Store(context.Background(), []byte("x"), "https://example.com", IngestOptions{})
	assert.ErrorIs(t, err, ErrUploadDir)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World!"))
	assert.Equal(t, "a-b-c", slugify("  a B///c "))
	assert.Equal(t, "", slugify("!!!"))
}
