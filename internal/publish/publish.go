// Package publish writes the board as a tree of Markdown files.
package publish

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"taskboard/internal/state"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes <toDir>/index.md and one <toDir>/tasks/<id>.md per task.
func WriteBoard(t state.Tree, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	tasksDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(t)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on first error.
	written := []string{indexPath}
	for _, task := range t.Tasks {
		md, err := RenderTaskMarkdown(t, task.ID)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(tasksDir, fileName(task.ID))
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

// fileName keeps ids with path separators inside the tasks directory.
func fileName(id string) string {
	return url.PathEscape(strings.TrimSpace(id)) + ".md"
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
