// Copyright (c) 2026 Hellomouse. All rights reserved.

package files

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu    sync.Mutex
	files map[string]*UserFile
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string]*UserFile{}}
}

func (f *fakeStore) FileExists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[id]
	return ok, nil
}

func (f *fakeStore) CreateFile(ctx context.Context, file *UserFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *file
	f.files[file.ID] = &cp
	return nil
}

func (f *fakeStore) GetFile(ctx context.Context, id string) (*UserFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return nil, nil
	}
	cp := *file
	return &cp, nil
}

func (f *fakeStore) ListFiles(ctx context.Context, userID string, offset, limit int) ([]*UserFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*UserFile
	for _, file := range f.files {
		if file.UserID == userID {
			cp := *file
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteFile(ctx context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return false, nil
	}
	delete(f.files, id)
	return true, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	uploadsRoot := filepath.Join(t.TempDir(), "uploads")
	stagingRoot := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(uploadsRoot, 0o755))
	require.NoError(t, os.MkdirAll(stagingRoot, 0o755))

	store := newFakeStore()
	return NewService(store, uploadsRoot, stagingRoot, discardLogger()), store
}

// buildMultipart writes each (filename, content) pair as a form file part
// and returns the encoded body plus the boundary.
func buildMultipart(t *testing.T, parts [][2]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, p := range parts {
		w, err := mw.CreateFormFile("file", p[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(p[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.Boundary()
}

func TestSplitFilename(t *testing.T) {
	name, ext := splitFilename("photo.jpg")
	assert.Equal(t, "photo", name)
	assert.Equal(t, "jpg", ext)

	name, ext = splitFilename(".gitignore")
	assert.Equal(t, ".gitignore", name)
	assert.Equal(t, "", ext)

	name, ext = splitFilename("noext")
	assert.Equal(t, "noext", name)
	assert.Equal(t, "", ext)

	name, ext = splitFilename("archive.tar.gz")
	assert.Equal(t, "archive.tar", name)
	assert.Equal(t, "gz", ext)
}

func TestIngestFiles_Success(t *testing.T) {
	service, store := newTestService(t)

	body, boundary := buildMultipart(t, [][2]string{
		{"a.txt", "hello"},
		{"b.txt", "world"},
	})
	mr := multipart.NewReader(body, boundary)

	result, err := service.IngestFiles(context.Background(), "user-1", mr)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	assert.Empty(t, result.Failed)
	assert.Len(t, store.files, 2)

	for _, id := range result.Succeeded {
		f, err := store.GetFile(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, f)
		path := filepath.Join(service.uploadsRoot, f.UserID, f.ID+"."+f.Extension)
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}
}

func TestIngestFiles_GlobalAcceptCap(t *testing.T) {
	service, store := newTestService(t)

	parts := make([][2]string, GlobalUploadAcceptCap+5)
	for i := range parts {
		parts[i] = [2]string{"f.txt", "data"}
	}
	body, boundary := buildMultipart(t, parts)
	mr := multipart.NewReader(body, boundary)

	result, err := service.IngestFiles(context.Background(), "user-1", mr)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, GlobalUploadAcceptCap)
	assert.Len(t, result.Failed, 5)
	assert.Len(t, store.files, GlobalUploadAcceptCap)
}

func TestIngestFiles_EmptyFilenameFails(t *testing.T) {
	service, _ := newTestService(t)

	body, boundary := buildMultipart(t, [][2]string{{"", "data"}})
	mr := multipart.NewReader(body, boundary)

	result, err := service.IngestFiles(context.Background(), "user-1", mr)
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	assert.Equal(t, []int{0}, result.Failed)
}

func TestDetectImageFormat(t *testing.T) {
	assert.Equal(t, "jpg", detectImageFormat([]byte{0xFF, 0xD8, 0xFF, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	assert.Equal(t, "png", detectImageFormat(pngMagic))
	webpHeader := append(append([]byte("RIFF"), 0, 0, 0, 0), []byte("WEBP")...)
	assert.Equal(t, "webp", detectImageFormat(webpHeader))
	assert.Equal(t, "", detectImageFormat([]byte("not an image")))
}

func TestUploadProfilePicture(t *testing.T) {
	service, _ := newTestService(t)

	img := image.NewRGBA(image.Rect(0, 0, 10, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	body, boundary := buildMultipart(t, [][2]string{{"avatar.png", buf.String()}})
	mr := multipart.NewReader(body, boundary)
	part, err := mr.NextPart()
	require.NoError(t, err)

	err = service.UploadProfilePicture(context.Background(), "user-1", part)
	require.NoError(t, err)

	finalPath := filepath.Join(service.uploadsRoot, "user-1", "user-1.png")
	f, err := os.Open(finalPath)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, ProfilePictureSize, decoded.Bounds().Dx())
	assert.Equal(t, ProfilePictureSize, decoded.Bounds().Dy())
}

func TestUploadProfilePicture_RejectsUnrecognizedFormat(t *testing.T) {
	service, _ := newTestService(t)

	body, boundary := buildMultipart(t, [][2]string{{"not-an-image.bin", "just some bytes, not an image"}})
	mr := multipart.NewReader(body, boundary)
	part, err := mr.NextPart()
	require.NoError(t, err)

	err = service.UploadProfilePicture(context.Background(), "user-1", part)
	require.Error(t, err)
}

func TestFilePath(t *testing.T) {
	service, store := newTestService(t)
	require.NoError(t, store.CreateFile(context.Background(), &UserFile{
		ID: "file-1", UserID: "user-1", OriginalName: "doc", Extension: "txt",
	}))

	path, err := service.FilePath(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(service.uploadsRoot, "user-1", "file-1.txt"), path)

	_, err = service.FilePath(context.Background(), "missing")
	require.Error(t, err)
}

func TestDeleteFile_OwnershipEnforced(t *testing.T) {
	service, store := newTestService(t)
	require.NoError(t, store.CreateFile(context.Background(), &UserFile{
		ID: "file-1", UserID: "user-1", OriginalName: "doc", Extension: "txt",
	}))

	err := service.DeleteFile(context.Background(), "user-2", "file-1")
	assert.Error(t, err)

	err = service.DeleteFile(context.Background(), "user-1", "file-1")
	require.NoError(t, err)

	_, err = service.FilePath(context.Background(), "file-1")
	assert.Error(t, err)
}
