package request

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// sniffLen matches the number of bytes http.DetectContentType considers.
const sniffLen = 512

// Attachment is an image picked for one of the form's upload slots.
type Attachment struct {
	Name        string
	Path        string
	ContentType string
	Size        int64
}

// IsImage reports whether the attachment carries an image/* content type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// Label is the display-only form of the attachment kept after submission.
func (a Attachment) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return filepath.Base(a.Path)
}

// LoadAttachment reads the head of the file at path and sniffs its content type.
func LoadAttachment(path string) (*Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("request: attachment path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("request: open attachment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("request: stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("request: attachment %s is a directory", path)
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("request: read attachment: %w", err)
	}
	return &Attachment{
		Name:        filepath.Base(path),
		Path:        path,
		ContentType: http.DetectContentType(head[:n]),
		Size:        info.Size(),
	}, nil
}
