package extractor

import (
	"fmt"
	"mime"
	"strings"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"

	// MaxUploadBytes is the largest file accepted for extraction (10 MiB).
	MaxUploadBytes int64 = 10 << 20
)

// File is what every upload carries: where the temp copy lives and what the
// client called it.
type File struct {
	Path     string
	Filename string
	Size     int64
}

// Upload is either a PDFUpload or an ImageUpload.
type Upload interface {
	file() File
}

type PDFUpload struct {
	File
}

type ImageUpload struct {
	File
	MediaType string
}

func (u PDFUpload) file() File   { return u.File }
func (u ImageUpload) file() File { return u.File }

// NewUpload classifies a stored upload by its declared media type. Unknown
// types and oversize files are rejected here so extraction never sees them.
func NewUpload(path, filename, mediaType string, size int64) (Upload, error) {
	if size > MaxUploadBytes {
		return nil, apperror.InvalidInput(fmt.Sprintf("file exceeds the %d MiB limit", MaxUploadBytes>>20))
	}

	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}

	f := File{Path: path, Filename: filename, Size: size}
	switch mt {
	case MediaTypePDF:
		return PDFUpload{File: f}, nil
	case MediaTypeJPEG, MediaTypePNG:
		return ImageUpload{File: f, MediaType: mt}, nil
	default:
		return nil, apperror.InvalidInput("only PDF, JPEG and PNG files are accepted")
	}
}

// AllowedMediaType reports whether mediaType can be turned into an Upload.
func AllowedMediaType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(strings.ToLower(strings.TrimSpace(mediaType)))
	if err != nil {
		return false
	}
	return mt == MediaTypePDF || mt == MediaTypeJPEG || mt == MediaTypePNG
}
