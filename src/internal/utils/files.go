package utils

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/cdnsift/cdnsift/src/internal/log"
)

// CloseOrWarn closes the given resource and logs a warning on failure.
func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && info.Mode().IsRegular()
}
