package installer

import (
	"runtime"
)

const windowsOperatingSystemConstant = "windows"

// Platform selects the operating-system specific archive formats and build commands.
type Platform struct {
	Windows bool
}

// CurrentPlatform describes the platform the binary runs on.
func CurrentPlatform() Platform {
	return Platform{Windows: runtime.GOOS == windowsOperatingSystemConstant}
}
