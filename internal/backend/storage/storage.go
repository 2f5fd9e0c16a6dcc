package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Area is a logical folder of the store
type Area string

const (
	AreaUploads   Area = "uploads"
	AreaProcessed Area = "processed"
)

var ErrNotFound = errors.New("file not found")

// Store defines the interface for photo storage operations
type Store interface {
	// Save writes data under name in area, replacing any existing file, and returns its location
	Save(ctx context.Context, area Area, name string, data []byte) (string, error)

	// Open returns a reader for the named file or ErrNotFound
	Open(ctx context.Context, area Area, name string) (io.ReadCloser, error)

	// Location returns the path reported to clients for the named file
	Location(area Area, name string) string
}

// ValidName reports whether name is a plain file name that cannot leave its area
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00") && !strings.Contains(name, "..")
}

// ReadAll opens and fully reads the named file
func ReadAll(ctx context.Context, store Store, area Area, name string) ([]byte, error) {
	rc, err := store.Open(ctx, area, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", area, name, err)
	}
	return data, nil
}

type Options struct {
	Type         string
	UploadDir    string
	ProcessedDir string
	S3           S3Config
}

// New creates the store configured in opts
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case TypeLocal:
		return NewLocalStore(opts.UploadDir, opts.ProcessedDir)
	case TypeS3:
		return NewS3Store(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", opts.Type)
	}
}
