package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// PackMarker is the file every language pack directory carries.
const PackMarker = "pack.toml"

// PathResolver finds data directories relative to the places wordmux is
// usually run from.
type PathResolver struct {
	executableDir string
	configDir     string
	workDir       string
}

// NewPathResolver resolves the executable location. configDir is the
// directory of the active config file and may be empty.
func NewPathResolver(configDir string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not determine working directory: %v", err)
	}
	return &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     configDir,
		workDir:       cwd,
	}, nil
}

// Candidates lists where dir may live, in order of preference.
func (pr *PathResolver) Candidates(dir string) []string {
	if filepath.IsAbs(dir) {
		return []string{dir}
	}
	var out []string
	for _, base := range []string{pr.configDir, pr.workDir, pr.executableDir, filepath.Dir(pr.executableDir)} {
		if base != "" {
			out = append(out, filepath.Join(base, dir))
		}
	}
	return out
}

// GetPacksDir returns the first candidate holding at least one pack. When
// none does, the first candidate is returned so the caller can report it.
func (pr *PathResolver) GetPacksDir(dir string) string {
	candidates := pr.Candidates(dir)
	for _, path := range candidates {
		if IsPacksDir(path) {
			log.Debugf("Found packs directory: %s", path)
			return path
		}
		log.Debugf("Packs directory candidate not valid: %s", path)
	}
	if len(candidates) == 0 {
		return dir
	}
	return candidates[0]
}

// IsPacksDir reports whether path has a subdirectory with a pack manifest.
func IsPacksDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "*", PackMarker))
	return err == nil && len(matches) > 0
}
