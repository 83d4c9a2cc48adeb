package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DetectProject maps a workspace directory to an Evergreen project identifier.
// An exact directory match wins; otherwise the longest mapped parent directory is used.
// Returns "" when nothing matches.
func DetectProject(projectsForDirectory map[string]string, workspace string) string {
	if workspace == "" || len(projectsForDirectory) == 0 {
		return ""
	}
	workspace = normalizePath(workspace)

	best, bestLen := "", 0
	for dir, project := range projectsForDirectory {
		dir = normalizePath(dir)
		if dir == workspace {
			return project
		}
		if isParent(dir, workspace) && len(dir) > bestLen {
			best, bestLen = project, len(dir)
		}
	}
	return best
}

// normalizePath expands a leading ~ and cleans the path.
func normalizePath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

func isParent(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
