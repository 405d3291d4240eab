package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"task-manager/backend/logging"
)

// FileService stores uploaded attachments on local disk and resolves them
// back by filename. Stored names carry a millisecond timestamp prefix so
// repeated uploads of the same file never collide.
type FileService struct {
	dir string
}

func NewFileService(dir string) (*FileService, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileService{dir: dir}, nil
}

// Dir returns the upload directory, for the static mount.
func (f *FileService) Dir() string {
	return f.dir
}

// SaveUploads writes each multipart file to the upload directory and returns
// the stored filenames.
func (f *FileService) SaveUploads(files []*multipart.FileHeader) ([]string, error) {
	stored := []string{}
	for _, header := range files {
		name := storedName(time.Now(), header.Filename)

		src, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", header.Filename, err)
		}

		dst, err := os.Create(filepath.Join(f.dir, name))
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create file %s: %w", name, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to write file %s: %w", name, err)
		}

		logging.Logger.Infof("Event ID: FILE_STORED, Description: Stored attachment %s", name)
		stored = append(stored, name)
	}
	return stored, nil
}

// Resolve maps a bare filename to its path in the upload directory.
// Anything that is not a plain filename is rejected the same way as a
// missing file.
func (f *FileService) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", ErrFileNotFound
	}

	path := filepath.Join(f.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrFileNotFound
	}
	return path, nil
}

func storedName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), filepath.Base(original))
}
