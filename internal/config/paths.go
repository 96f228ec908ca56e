package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Paths contains the resolved application directories. Everything is
// anchored to the executable directory, never the working directory, so the
// service behaves the same from a shell, a service manager, or a container.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ExportsDir    string
	LogsDir       string
}

var (
	pathsOnce   sync.Once
	cachedPaths *Paths
	pathsErr    error
)

// GetPaths returns the application paths relative to the executable
// location. The result is computed once and cached.
func GetPaths() (*Paths, error) {
	pathsOnce.Do(func() {
		cachedPaths, pathsErr = resolvePathsFromExecutable()
	})
	return cachedPaths, pathsErr
}

func resolvePathsFromExecutable() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	exeDir := filepath.Dir(exe)

	dataDir := filepath.Join(exeDir, "data")
	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		ExportsDir:    filepath.Join(dataDir, "exports"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}, nil
}

// EnsureDirectories creates the base directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ResolveDataFile anchors a relative data file path under DataDir.
// Absolute paths pass through untouched.
func (p *Paths) ResolveDataFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.DataDir, path)
}

// ResolveLogFile anchors a relative log file path under LogsDir.
func (p *Paths) ResolveLogFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.LogsDir, path)
}

// ResolveExportFile anchors a relative export file path under ExportsDir.
func (p *Paths) ResolveExportFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExportsDir, path)
}
