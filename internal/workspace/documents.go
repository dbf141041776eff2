package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"doc-chat/internal/domain"
)

// ErrUnsupportedFile is returned for anything that is not a plain-text file.
var ErrUnsupportedFile = errors.New("workspace: only .txt / text/plain files can be uploaded")

// IOError wraps a failure to read an uploaded file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("workspace: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UploadResult is delivered once per ReadFileAsync call.
type UploadResult struct {
	Document domain.Document
	Err      error
}

// IsTextFile applies the upload filter: a .txt name or a text/plain type.
func IsTextFile(name, contentType string) bool {
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/plain"
}

// NewDocument stamps content with an upload-time id.
func NewDocument(name, content string, uploadedAt time.Time) domain.Document {
	return domain.Document{
		ID:      "doc-" + strconv.FormatInt(uploadedAt.UnixMilli(), 10),
		Name:    name,
		Content: content,
	}
}

// ReadDocument reads r to the end and keeps the text verbatim.
func ReadDocument(name string, r io.Reader, uploadedAt time.Time) (domain.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, &IOError{Path: name, Err: err}
	}
	return NewDocument(name, string(raw), uploadedAt), nil
}

// ReadFileAsync reads path in the background. The returned channel yields
// exactly one result and is then closed.
func ReadFileAsync(ctx context.Context, path string) <-chan UploadResult {
	out := make(chan UploadResult, 1)
	go func() {
		defer close(out)
		doc, err := readFile(ctx, path)
		out <- UploadResult{Document: doc, Err: err}
	}()
	return out
}

func readFile(ctx context.Context, path string) (domain.Document, error) {
	name := filepath.Base(path)
	if !IsTextFile(name, mime.TypeByExtension(filepath.Ext(name))) {
		return domain.Document{}, ErrUnsupportedFile
	}
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, &IOError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	return ReadDocument(name, f, time.Now())
}
