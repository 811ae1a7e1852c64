package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hwdepot/rigbuilder/internal/storage"
)

// FileStore persists every key as a JSON document under BaseDir.
type FileStore struct {
	BaseDir string
}

func (store *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := store.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set replaces the value atomically: the payload goes to a temporary file in
// the same directory which is then renamed over the target while holding the
// key's advisory lock.
func (store *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := store.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(store.BaseDir, 0o755); err != nil {
		return err
	}

	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	tmp, err := os.CreateTemp(store.BaseDir, "."+key+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (store *FileStore) Remove(_ context.Context, key string) error {
	path, err := store.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Remove(path + ".lock"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (store *FileStore) path(key string) (string, error) {
	if store.BaseDir == "" {
		return "", errors.New("base directory is not configured")
	}
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(store.BaseDir, key+".json"), nil
}
