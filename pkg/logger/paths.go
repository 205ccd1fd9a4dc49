/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"
)

const logFileName = "retire.log"

// PlatformLogPaths returns candidate log paths in order of priority for the platform.
func PlatformLogPaths() []string {
	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths, filepath.Join("/Library/Logs/retire", logFileName))
	default:
		paths = append(paths, filepath.Join("/var/log/retire", logFileName))
	}

	if state := xdgStateHome(); state != "" {
		paths = append(paths, filepath.Join(state, "retire", logFileName))
	}
	return append(paths, filepath.Join(os.TempDir(), "retire", logFileName))
}

func xdgStateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".local", "state")
}
