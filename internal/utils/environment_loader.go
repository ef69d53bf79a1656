package utils

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

const environmentFileLoadErrorTemplateConstant = "failed to load environment file %s: %w"

// LoadEnvironmentFile exports the KEY=value pairs of a dotenv file into the
// process environment without overriding variables that are already set.
// A missing file is ignored unless required is true.
func LoadEnvironmentFile(filePath string, required bool) (bool, error) {
	if len(filePath) == 0 {
		return false, nil
	}

	loadError := godotenv.Load(filePath)
	if loadError == nil {
		return true, nil
	}
	if !required && errors.Is(loadError, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(environmentFileLoadErrorTemplateConstant, filePath, loadError)
}
