package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// versionTimeout bounds how long a CLI gets to answer --version.
const versionTimeout = 5 * time.Second

// extraBinDirs are common install locations checked beyond PATH.
var extraBinDirs = []string{
	".local/bin",
	".npm-global/bin",
	".yarn/bin",
	"/usr/local/bin",
	"/opt/homebrew/bin",
}

// DiscoverPaths returns candidate executables for an engine, PATH hit
// first, deduplicated.
func DiscoverPaths(engine Engine) []string {
	name := string(engine)
	seen := map[string]struct{}{}
	var paths []string

	if p, err := exec.LookPath(name); err == nil {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		paths = append(paths, p)
		seen[p] = struct{}{}
	}

	home, _ := os.UserHomeDir()
	for _, dir := range extraBinDirs {
		if !filepath.IsAbs(dir) {
			if home == "" {
				continue
			}
			dir = filepath.Join(home, dir)
		}
		candidate := filepath.Join(dir, name)
		if _, ok := seen[candidate]; ok {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			paths = append(paths, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return paths
}

// ValidatePath runs the executable with --version and returns the
// reported version line.
func ValidatePath(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	return version, nil
}
