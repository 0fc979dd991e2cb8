package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileKind is a family of uploads accepted for file attributes.
type FileKind struct {
	Name       string
	MimeTypes  map[string]bool
	Extensions map[string]bool
}

var (
	ImageFiles = FileKind{
		Name: "image",
		MimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		Extensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
	}

	DocumentFiles = FileKind{
		Name: "document",
		MimeTypes: map[string]bool{
			"application/pdf": true,
		},
		Extensions: map[string]bool{
			".pdf": true,
		},
	}

	// TextFiles covers manuals and exported spreadsheets.
	TextFiles = FileKind{
		Name: "text",
		MimeTypes: map[string]bool{
			"text/plain; charset=utf-8": true,
		},
		Extensions: map[string]bool{
			".txt": true,
			".csv": true,
		},
	}
)

// AttachmentKinds is every kind a file attribute accepts.
var AttachmentKinds = []FileKind{ImageFiles, DocumentFiles, TextFiles}

var ErrEmptyFile = errors.New("file is empty")

// DetectFile sniffs the upload's content and checks it against kinds. The
// detected media type is returned so callers never trust the client header.
func DetectFile(header *multipart.FileHeader, maxSize int64, kinds ...FileKind) (string, error) {
	if header.Size == 0 {
		return "", ErrEmptyFile
	}
	if maxSize > 0 && header.Size > maxSize {
		return "", fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// DetectContentType looks at no more than 512 bytes.
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	detected := http.DetectContentType(buffer[:n])
	ext := strings.ToLower(filepath.Ext(header.Filename))

	for _, kind := range kinds {
		if kind.MimeTypes[detected] && kind.Extensions[ext] {
			return detected, nil
		}
	}

	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.Name)
	}
	return "", fmt.Errorf("unsupported file (detected %s, extension %q); allowed: %s", detected, ext, strings.Join(names, ", "))
}
