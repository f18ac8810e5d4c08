package service

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
)

// MaxFileSize is the default per-file upload limit.
const MaxFileSize int64 = 50 * 1024 * 1024

// AllowedFileTypes is the upload allow-list: PDF, DOC, DOCX, PPT, PPTX and plain text.
var AllowedFileTypes = setOf(
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
)

func setOf(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Rejection explains why one file of a batch was not stored.
type Rejection struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// MediaType returns the lower-cased MIME type of ct without parameters.
func MediaType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// validateUpload checks type, then size, and returns the normalized media type.
func validateUpload(in UploadFile, maxSize int64) (string, error) {
	if in.Content == nil || in.Size < 0 {
		return "", fmt.Errorf("%w: no content for %q", ErrInvalidInput, in.Name)
	}
	mt := MediaType(in.ContentType)
	if _, ok := AllowedFileTypes[mt]; !ok {
		return "", fmt.Errorf("%w: file type not allowed: %s. Allowed types: PDF, DOC, DOCX, PPT, PPTX, TXT", ErrUnsupportedFileType, in.ContentType)
	}
	if in.Size > maxSize {
		return "", fmt.Errorf("%w: %.1fMB (max: %dMB)", ErrFileTooLarge, float64(in.Size)/(1024*1024), maxSize/(1024*1024))
	}
	return mt, nil
}

// rejection turns a per-file failure into its reported form.
func rejection(name string, err error) Rejection {
	r := Rejection{Name: name, Reason: err.Error()}
	switch {
	case errors.Is(err, ErrUnsupportedFileType):
		r.Code = "UNSUPPORTED_FILE_TYPE"
	case errors.Is(err, ErrFileTooLarge):
		r.Code = "FILE_TOO_LARGE"
	case errors.Is(err, ErrInvalidInput):
		r.Code = "INVALID_INPUT"
	default:
		r.Code = "STORAGE_ERROR"
		r.Reason = ErrStorage.Error()
	}
	return r
}
