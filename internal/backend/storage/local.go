package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStore keeps files in one directory per area
type LocalStore struct {
	dirs map[Area]string
}

// NewLocalStore creates the area directories if needed
func NewLocalStore(uploadDir, processedDir string) (*LocalStore, error) {
	dirs := map[Area]string{
		AreaUploads:   uploadDir,
		AreaProcessed: processedDir,
	}
	for area, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory %s: %w", area, dir, err)
		}
	}
	slog.Info("initialized local storage", "upload_dir", uploadDir, "processed_dir", processedDir)
	return &LocalStore{dirs: dirs}, nil
}

func (l *LocalStore) path(area Area, name string) (string, error) {
	dir, ok := l.dirs[area]
	if !ok {
		return "", fmt.Errorf("unknown storage area: %s", area)
	}
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return filepath.Join(dir, name), nil
}

func (l *LocalStore) Save(_ context.Context, area Area, name string, data []byte) (string, error) {
	p, err := l.path(area, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	return p, nil
}

func (l *LocalStore) Open(_ context.Context, area Area, name string) (io.ReadCloser, error) {
	p, err := l.path(area, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, nil
}

func (l *LocalStore) Location(area Area, name string) string {
	return filepath.Join(l.dirs[area], name)
}
