// Package storage keeps product image files and removes them once the
// product no longer references them.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for uploads whose extension is not an
// accepted image type.
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists image files and resolves the references it hands out.
type ImageStore interface {
	// Save stores the upload and returns the reference recorded on the product.
	Save(ctx context.Context, upload *Upload) (string, error)

	// Delete removes the file behind ref. Deleting a missing file is not an error.
	Delete(ctx context.Context, ref string) error
}

// Extension returns the normalised extension of filename if it is an
// accepted image type.
func Extension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

func contentType(ext string, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return allowedExtensions[ext]
}
