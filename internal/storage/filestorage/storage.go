package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"mpsite/internal/storage"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// ValidName имя набора данных: буквы, цифры, '-' и '_'
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// FileStorage каталог JSON-наборов вида <name>.json
type FileStorage interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) (filePath string, fileSize int64, err error)
	Delete(ctx context.Context, name string) error
	GetFullPath(name string) string
	GetBaseDir() string
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string // например "./data"
}

func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{baseDir: baseDir}, nil
}

func (s *LocalFileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	const op = "filestorage.Read"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("%s: %q: %w", op, name, storage.ErrInvalidName)
	}

	data, err := os.ReadFile(s.GetFullPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %q: %w", op, name, storage.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

// Save пишет во временный файл и переименовывает, читатели не видят половину
func (s *LocalFileStorage) Save(ctx context.Context, name string, data []byte) (string, int64, error) {
	const op = "filestorage.Save"

	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if !ValidName(name) {
		return "", 0, fmt.Errorf("%s: %q: %w", op, name, storage.ErrInvalidName)
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+name+"-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("%s: failed to create temp file: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	n, err := tmp.Write(data)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("%s: failed to write: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("%s: failed to close: %w", op, err)
	}

	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
	}

	if err := os.Rename(tmp.Name(), s.GetFullPath(name)); err != nil {
		return "", 0, fmt.Errorf("%s: failed to rename: %w", op, err)
	}

	return name + ".json", int64(n), nil
}

func (s *LocalFileStorage) Delete(_ context.Context, name string) error {
	if !ValidName(name) {
		return storage.ErrInvalidName
	}
	return os.Remove(s.GetFullPath(name))
}

// GetFullPath путь к файлу набора на диске
func (s *LocalFileStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}
