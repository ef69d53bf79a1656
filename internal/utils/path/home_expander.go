// Package pathutils resolves user supplied paths such as "~/builds/boost".
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant  = "~"
	forwardSlashSeparator = "/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading "~" with the home directory. The home
// directory is looked up once, on first use.
type HomeExpander struct {
	lookupHomeDirectory func() (string, error)
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{lookupHomeDirectory: sync.OnceValues(provider)}
}

// Expand resolves "~", "~/rest" and, on Windows, "~\rest". Other paths, including
// "~user/rest", are returned unchanged, as is every path when the home
// directory cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || expander.lookupHomeDirectory == nil {
		return candidatePath
	}

	remainder, hasShortcut := strings.CutPrefix(candidatePath, homeShortcutConstant)
	if !hasShortcut {
		return candidatePath
	}
	if len(remainder) > 0 && !isSeparatorPrefix(remainder) {
		return candidatePath
	}

	homeDirectory, lookupError := expander.lookupHomeDirectory()
	if lookupError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	if len(remainder) == 0 {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, remainder[1:])
}

// ExpandAbsolute expands the home shortcut and then makes the result absolute
// relative to the working directory. Empty paths stay empty.
func (expander *HomeExpander) ExpandAbsolute(candidatePath string) (string, error) {
	if len(candidatePath) == 0 {
		return candidatePath, nil
	}
	return filepath.Abs(expander.Expand(candidatePath))
}

func isSeparatorPrefix(remainder string) bool {
	return strings.HasPrefix(remainder, forwardSlashSeparator) || remainder[0] == os.PathSeparator
}
