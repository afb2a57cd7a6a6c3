// Package media uploads listing photos to the configured media backend and
// handles the data URLs drafts keep them in.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/imaging"
)

var (
	ErrUploadFailed = errors.New("media upload failed")
	ErrEmptyFile    = errors.New("file is empty")
)

// Uploader stores one file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// objectName builds folder/<uuid><ext> for a new upload.
func objectName(folder, name, contentType string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		ext = imaging.ExtensionFor(contentType)
	}
	key := uuid.NewString() + ext
	if folder = strings.Trim(folder, "/"); folder != "" {
		key = folder + "/" + key
	}
	return key
}

func checkPayload(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if int64(len(data)) > imaging.MaxFileSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrUploadFailed, imaging.MaxFileSize)
	}
	return nil
}
