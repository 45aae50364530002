package common

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultMaxReadSize bounds files read through the FileManager.
const DefaultMaxReadSize int64 = 10 * 1024 * 1024

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ReadFile reads a regular file, refusing directories and files larger than maxSize.
// A maxSize of zero or less applies DefaultMaxReadSize.
func (fm *FileManager) ReadFile(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxReadSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, WrapErrorf(err, "failed to stat file: %s", path)
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory, not a file")
	}
	if info.Size() > maxSize {
		return nil, NewValidationError("file_size", info.Size(), fmt.Sprintf("exceeds maximum size of %d bytes", maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapErrorf(err, "failed to read file: %s", path)
	}
	return data, nil
}

// ReadPrefix reads at most limit bytes from the start of a file.
func (fm *FileManager) ReadPrefix(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapErrorf(err, "failed to open file: %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fm.logger.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, WrapErrorf(err, "failed to read file: %s", path)
	}
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return WrapError(err, "failed to check directory: "+path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// WriteFileAtomic replaces path with data. The bytes go to a temporary file in the
// same directory which is synced and then renamed over path, so a crash leaves
// either the previous file or the new one, never a partial write.
func (fm *FileManager) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fm.EnsureDirectory(dir, 0755); err != nil {
		return WrapError(err, "failed to create parent directories for: "+path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapErrorf(err, "failed to create temp file for: %s", path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return WrapErrorf(err, "failed to write temp file for: %s", path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return WrapErrorf(err, "failed to sync temp file for: %s", path)
	}
	if err := tmp.Close(); err != nil {
		return WrapErrorf(err, "failed to close temp file for: %s", path)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return WrapErrorf(err, "failed to set permissions on temp file for: %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return WrapErrorf(err, "failed to replace file: %s", path)
	}
	committed = true

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written atomically")
	return nil
}
