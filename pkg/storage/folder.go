package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound is returned when a file id or name does not exist in the folder.
	ErrNotFound = errors.New("file not found")
	// ErrReadOnly is returned by folders opened without write scope.
	ErrReadOnly = errors.New("folder is read-only")
)

// DefaultPageSize caps a single folder listing.
const DefaultPageSize = 1000

// FileRef identifies a file inside the folder.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Object is an open read stream of a file's content.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	// Size is -1 when the backend does not report it.
	Size int64
}

// Folder is the file-storage container holding audio, transcript and
// highlight blobs.
type Folder interface {
	List(ctx context.Context) ([]FileRef, error)
	FindByName(ctx context.Context, name string) (FileRef, bool, error)
	Open(ctx context.Context, id string) (*Object, error)
	// Put creates the named file or replaces its content, reporting whether
	// it was created.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (FileRef, bool, error)
}

// ReadText downloads a whole file and returns it as a string.
func ReadText(ctx context.Context, f Folder, id string) (string, error) {
	obj, err := f.Open(ctx, id)
	if err != nil {
		return "", err
	}
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", id, err)
	}
	return string(data), nil
}
