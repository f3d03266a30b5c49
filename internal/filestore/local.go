package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localConfig struct {
	Dir string `json:"dir"`
}

type localStore struct {
	dir string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	return &localStore{dir: config.Dir}, nil
}

func (s *localStore) Save(ctx context.Context, key string, r ReadSeekCloser, size int64) error {
	_ = ctx
	if err := s.ensureDir(); err != nil {
		return err
	}
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	return err
}

func (s *localStore) Open(ctx context.Context, key string) (ReadSeekCloser, error) {
	_ = ctx
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *localStore) List(ctx context.Context) ([]FileInfo, error) {
	_ = ctx
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Key:     entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func (s *localStore) keyPath(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid file key")
	}
	return filepath.Join(s.dir, key), nil
}

func (s *localStore) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}
