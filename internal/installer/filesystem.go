package installer

import (
	"errors"
	"os"
)

func pathExists(path string) bool {
	_, statError := os.Stat(path)
	return statError == nil
}

// removeFile deletes a single file, ignoring a file that is already gone.
func removeFile(path string) error {
	removeError := os.Remove(path)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return removeError
	}
	return nil
}
