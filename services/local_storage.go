package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Pedroffda/alinhavo-api/utils"
)

// LocalStorage keeps objects on disk below a directory, served by the
// uploads route. Used when no S3 bucket is configured.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Dir returns the storage root
func (l *LocalStorage) Dir() string {
	return l.dir
}

func (l *LocalStorage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	return utils.SaveFile(l.dir, key, data)
}

func (l *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	return utils.GetImageURL(key), nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	path, err := utils.SafeJoin(l.dir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
