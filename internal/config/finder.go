package config

import (
	"os"
	"path/filepath"
)

// LocalConfigName is the base name of the optional config file in the build directory
const LocalConfigName = ".rustpack"

// FindLocalConfig returns the config file in dir, or "" if there is none.
// Unlike a project tool this does not walk up: directories above the build
// directory belong to the build host.
func FindLocalConfig(dir string) string {
	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		path := filepath.Join(dir, LocalConfigName+"."+ext)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}
