package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath names the environment variable that pins the config file.
const EnvPath = "MEDIAGRAB_CONFIG"

// ErrNotFound is returned by Discover when no candidate file exists and
// EnvPath is unset.
var ErrNotFound = errors.New("no config file found")

// DefaultPath is where `mediagrab init` writes and the daemon looks after
// the working directory: $XDG_CONFIG_HOME/mediagrab/config.toml, falling
// back to ~/.config.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mediagrab", "config.toml")
}

// searchPaths lists the locations Discover tries when EnvPath is unset.
func searchPaths() []string {
	return []string{
		"config.toml",
		DefaultPath(),
		filepath.Join("/etc", "mediagrab", "config.toml"),
	}
}

// Discover locates the daemon's config file. A path in EnvPath wins and must
// exist; otherwise the first existing entry of the working directory, the
// user config dir and /etc/mediagrab is used. Errors wrap ErrNotFound only
// when nothing was pinned and nothing was found.
func Discover() (string, error) {
	if pinned, ok := os.LookupEnv(EnvPath); ok && pinned != "" {
		if _, err := os.Stat(pinned); err != nil {
			return "", fmt.Errorf("%s points at an unusable file: %w", EnvPath, err)
		}
		return pinned, nil
	}

	candidates := searchPaths()
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (looked in %s)", ErrNotFound, strings.Join(candidates, ", "))
}
