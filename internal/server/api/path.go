package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/moviebox/internal/common"
)

// resolve maps a slash-separated path relative to root onto the filesystem.
// Paths that climb out of root are rejected with common.ErrInvalidPath.
func resolve(root, rel string) (string, error) {
	root = filepath.Clean(root)
	full := filepath.Join(root, filepath.FromSlash(rel))

	r, err := filepath.Rel(root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidPath, rel)
	}

	return full, nil
}
