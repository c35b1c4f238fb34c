// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome resolves a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ContractHome rewrites a path under the home directory to ~ shorthand.
func ContractHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	clean := filepath.Clean(path)
	home = filepath.Clean(home)
	if clean == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(clean, home+string(os.PathSeparator)); ok {
		return "~/" + filepath.ToSlash(rel)
	}
	return path
}
