package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindReview looks upwards from startDir for a directory containing
// review.yaml and returns its absolute path. This lets the CLI run from
// anywhere inside a review directory.
func FindReview(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, "review.yaml") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no review found above %s", startDir)
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
