package storage

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/ai"
)

// ImageStore resolves ticket attachment references within a single storage
// root and validates them as bounded-dimension images. Every failure mode
// degrades to nil: a bad attachment must never block ticket creation.
type ImageStore struct {
	root         string
	maxWidth     int
	maxHeight    int
	maxFileBytes int64
	logger       *zap.Logger
}

// NewImageStore constructs the store rooted at dir.
func NewImageStore(dir string, maxWidth, maxHeight int, maxFileBytes int64, logger *zap.Logger) *ImageStore {
	return &ImageStore{
		root:         dir,
		maxWidth:     maxWidth,
		maxHeight:    maxHeight,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// LoadImage returns the validated image payload for a stored filename, or nil
// when the reference is empty, escapes the storage root, is unreadable, is
// not a decodable image, or exceeds the configured pixel bounds.
func (s *ImageStore) LoadImage(name string) *ai.ImagePayload {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	path, ok := s.resolve(name)
	if !ok {
		s.logger.Warn("attachment reference escapes storage root, ignoring",
			zap.String("ref", name))
		return nil
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.logger.Debug("attachment not readable, composing text-only",
			zap.String("ref", name))
		return nil
	}
	if s.maxFileBytes > 0 && info.Size() > s.maxFileBytes {
		s.logger.Warn("attachment exceeds size limit, ignoring",
			zap.String("ref", name), zap.Int64("size", info.Size()))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("attachment read failed, composing text-only",
			zap.String("ref", name), zap.Error(err))
		return nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.logger.Debug("attachment is not a decodable image, ignoring",
			zap.String("ref", name), zap.Error(err))
		return nil
	}
	if (s.maxWidth > 0 && cfg.Width > s.maxWidth) || (s.maxHeight > 0 && cfg.Height > s.maxHeight) {
		s.logger.Warn("attachment image dimensions out of bounds, ignoring",
			zap.String("ref", name), zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
		return nil
	}

	return &ai.ImagePayload{
		MIMEType: "image/" + format,
		Data:     data,
	}
}

// resolve joins name onto the storage root and verifies the result stays
// inside it. Absolute paths and traversal segments are rejected.
func (s *ImageStore) resolve(name string) (string, bool) {
	if filepath.IsAbs(name) {
		return "", false
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(filepath.Join(s.root, cleaned))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return absPath, true
}
