package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"silencescan/internal/config"
	"silencescan/internal/failures"
)

// ListCandidates returns the files directly inside cfg.Paths.InputDir whose
// extension is configured, sorted by name. Subdirectories, including
// symlinks to directories, are skipped.
func ListCandidates(cfg *config.Config) ([]string, error) {
	dir := cfg.Paths.InputDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failures.Wrap(failures.ErrIO, "scan", "list candidates", fmt.Sprintf("read %s", dir), err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !cfg.MatchesExtension(entry.Name()) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(full)
			if err != nil || info.IsDir() {
				continue
			}
		}
		paths = append(paths, full)
	}
	sort.Strings(paths)
	return paths, nil
}
