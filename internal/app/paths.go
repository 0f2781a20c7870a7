package app

import (
	"os"
	"path/filepath"
)

// DefaultDir returns ~/.dpln, or ".dpln" when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dpln"
	}
	return filepath.Join(home, ".dpln")
}
