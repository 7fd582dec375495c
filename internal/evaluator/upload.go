package evaluator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes bounds resume files when no limit is configured.
const DefaultMaxUploadBytes int64 = 5 << 20

var supportedResumeExtensions = []string{".pdf", ".docx"}

// Upload is the server's answer to a resume upload.
type Upload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Message  string `json:"message"`
}

// ValidateResumeFile checks the file type and size before anything is sent.
func ValidateResumeFile(name string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	supported := false
	for _, allowed := range supportedResumeExtensions {
		if ext == allowed {
			supported = true
			break
		}
	}
	if !supported {
		return &ValidationError{Field: "resume", Message: "Only PDF and DOCX files are supported"}
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if size <= 0 {
		return &ValidationError{Field: "resume", Message: "file is empty"}
	}
	if size > maxBytes {
		return &ValidationError{Field: "resume", Message: fmt.Sprintf("file is larger than %d bytes", maxBytes)}
	}

	return nil
}

// UploadResume sends the file for text extraction and returns the extracted content.
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	var upload Upload
	file := &formFile{field: "file", filename: filepath.Base(filename), content: content}
	if _, err := c.postForm(ctx, "upload resume", c.url(uploadPath), nil, file, &upload); err != nil {
		return nil, err
	}

	return &upload, nil
}
