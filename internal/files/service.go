// Copyright (c) 2026 Hellomouse. All rights reserved.

package files

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/pkg/uuid"
)

// Service orchestrates the multipart ingest pipeline and the
// profile-picture variant on top of [Store].
type Service struct {
	store       Store
	uploadsRoot string
	stagingRoot string
	logger      *slog.Logger
}

// NewService constructs a new [Service]. uploadsRoot and stagingRoot are
// the configured user_uploads_dir and user_uploads_dir_tmp paths.
func NewService(store Store, uploadsRoot, stagingRoot string, logger *slog.Logger) *Service {
	return &Service{store: store, uploadsRoot: uploadsRoot, stagingRoot: stagingRoot, logger: logger}
}

// splitFilename derives a stem/extension pair from a content-disposition
// filename. A leading-dot name with no further dot (".gitignore") keeps
// the whole string as the stem with no extension, rather than yielding an
// empty stem.
func splitFilename(raw string) (name, ext string) {
	idx := strings.LastIndex(raw, ".")
	if idx <= 0 {
		return raw, ""
	}
	return raw[:idx], raw[idx+1:]
}

// IngestFiles streams every part of mr into the staging directory, then
// commits each one as a [UserFile] under userID's uploads directory.
// Per-part failures are isolated into the result's Failed bucket rather
// than aborting the whole request; only a transport-level read error on
// the multipart reader itself aborts early. After [GlobalUploadAcceptCap]
// parts have been accepted, remaining parts are drained unread into
// Failed.
func (s *Service) IngestFiles(ctx context.Context, userID string, mr *multipart.Reader) (*IngestResult, error) {
	result := &IngestResult{Succeeded: []string{}, Failed: []int{}}

	for index := 0; ; index++ {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}

		if len(result.Succeeded) >= GlobalUploadAcceptCap {
			_, _ = io.Copy(io.Discard, part)
			part.Close()
			result.Failed = append(result.Failed, index)
			continue
		}

		id, ok := s.ingestPart(ctx, userID, part)
		part.Close()
		if ok {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Failed = append(result.Failed, index)
		}
	}

	return result, nil
}

// ingestPart streams one part to staging, then commits it as a file row
// and a final on-disk path. Any failure cleans up the staging file and
// reports false rather than propagating an error, so the caller can
// continue with the remaining parts.
func (s *Service) ingestPart(ctx context.Context, userID string, part *multipart.Part) (string, bool) {
	name, ext := splitFilename(part.FileName())
	if name == "" && ext == "" {
		return "", false
	}
	if len(name) > MaxOriginalNameLength {
		name = name[:MaxOriginalNameLength]
	}
	if len(ext) > MaxExtensionLength {
		ext = ext[:MaxExtensionLength]
	}

	stagingPath := filepath.Join(s.stagingRoot, uuid.New())
	staging, err := os.Create(stagingPath)
	if err != nil {
		s.logger.Warn("file_stage_create_failed", slog.Any("error", err))
		return "", false
	}

	size, err := io.Copy(staging, part)
	staging.Close()
	if err != nil {
		os.Remove(stagingPath)
		s.logger.Warn("file_stage_write_failed", slog.Any("error", err))
		return "", false
	}

	id, err := uuid.NewV4WithRetry(ctx, s.store.FileExists)
	if err != nil {
		os.Remove(stagingPath)
		return "", false
	}

	f := &UserFile{
		ID:           id,
		UserID:       userID,
		OriginalName: name,
		Extension:    ext,
		UploadDate:   time.Now().UTC(),
		FileSize:     size,
	}
	if err := s.store.CreateFile(ctx, f); err != nil {
		os.Remove(stagingPath)
		s.logger.Warn("file_row_insert_failed", slog.Any("error", err))
		return "", false
	}

	userDir := filepath.Join(s.uploadsRoot, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		s.rollbackPart(ctx, userID, id, stagingPath)
		s.logger.Warn("file_user_dir_failed", slog.Any("error", err))
		return "", false
	}

	finalPath := filepath.Join(userDir, id+"."+ext)
	if err := os.Rename(stagingPath, finalPath); err != nil {
		s.rollbackPart(ctx, userID, id, stagingPath)
		s.logger.Warn("file_commit_rename_failed", slog.Any("error", err))
		return "", false
	}

	return id, true
}

// rollbackPart undoes a partially committed part: the staging file and the
// already-inserted row both go, so no user_files row survives without a
// file on disk.
func (s *Service) rollbackPart(ctx context.Context, userID, id, stagingPath string) {
	os.Remove(stagingPath)
	if _, err := s.store.DeleteFile(ctx, userID, id); err != nil {
		s.logger.Warn("file_row_rollback_failed", slog.String("file_id", id), slog.Any("error", err))
	}
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// detectImageFormat inspects the first 12 bytes of header, sniffing the
// image format independent of whatever extension the client sent. Returns
// "" if none of JPEG/PNG/WebP match.
func detectImageFormat(header []byte) string {
	if len(header) >= 3 && bytes.Equal(header[:3], jpegMagic) {
		return "jpg"
	}
	if len(header) >= 8 && bytes.Equal(header[:8], pngMagic) {
		return "png"
	}
	if len(header) >= 12 && bytes.Equal(header[:4], riffMagic) && bytes.Equal(header[8:12], webpMagic) {
		return "webp"
	}
	return ""
}

// UploadProfilePicture streams a single part to staging, sniffs its image
// format, decodes it, resizes-to-fill 200x200 with a triangle (linear)
// filter, and re-encodes as PNG at the fixed per-user path.
func (s *Service) UploadProfilePicture(ctx context.Context, userID string, part *multipart.Part) error {
	stagingPath := filepath.Join(s.stagingRoot, uuid.New())
	staging, err := os.Create(stagingPath)
	if err != nil {
		return apperr.Internal(err)
	}
	defer os.Remove(stagingPath)

	if _, err := io.Copy(staging, part); err != nil {
		staging.Close()
		return apperr.Internal(err)
	}
	staging.Close()

	f, err := os.Open(stagingPath)
	if err != nil {
		return apperr.Internal(err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return apperr.Unprocessable("Could not read image header")
	}
	if detectImageFormat(header) == "" {
		return apperr.Unprocessable("Unrecognized image format; expected JPEG, PNG, or WebP")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return apperr.Internal(err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return apperr.Unprocessable("Could not decode image")
	}

	resized := imaging.Fill(img, ProfilePictureSize, ProfilePictureSize, imaging.Center, imaging.Linear)

	if err := os.MkdirAll(filepath.Join(s.uploadsRoot, userID), 0o755); err != nil {
		return apperr.Internal(err)
	}

	finalPath := filepath.Join(s.uploadsRoot, userID, userID+".png")
	out, err := os.Create(finalPath)
	if err != nil {
		return apperr.Internal(err)
	}
	defer out.Close()

	if err := png.Encode(out, resized); err != nil {
		return apperr.Internal(err)
	}

	s.logger.Info("profile_picture_updated", slog.String("user_id", userID))
	return nil
}

// ListFiles returns the caller's own uploads, newest first.
func (s *Service) ListFiles(ctx context.Context, callerID string, offset, limit int) ([]*UserFile, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListFiles(ctx, callerID, offset, limit)
}

// FilePath resolves a file id the caller may serve to its on-disk path.
// There is no per-file ACL beyond id unguessability: any authenticated
// identity (including "public") may request any existing file id.
func (s *Service) FilePath(ctx context.Context, id string) (string, error) {
	f, err := s.store.GetFile(ctx, id)
	if err != nil {
		return "", err
	}
	if f == nil {
		return "", apperr.NotFound("File")
	}
	return filepath.Join(s.uploadsRoot, f.UserID, f.ID+"."+f.Extension), nil
}

// DeleteFile removes a file's row and on-disk path, scoped to callerID so
// a user may only delete their own files.
func (s *Service) DeleteFile(ctx context.Context, callerID, id string) error {
	f, err := s.store.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return apperr.NotFound("File")
	}

	deleted, err := s.store.DeleteFile(ctx, callerID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.Forbidden("You do not own this file")
	}

	path := filepath.Join(s.uploadsRoot, f.UserID, f.ID+"."+f.Extension)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("file_disk_delete_failed", slog.String("path", path), slog.Any("error", err))
	}
	return nil
}
