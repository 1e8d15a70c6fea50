package prerender

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OutputPath maps "/" to <outDir>/index.html and every other route to
// <outDir>/<route>/index.html.
func OutputPath(outDir, route string) string {
	if route == "/" {
		return filepath.Join(outDir, "index.html")
	}
	return filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(route, "/")), "index.html")
}

// WritePage creates any missing parent directories and overwrites the page.
func WritePage(outDir, route, doc string) (string, error) {
	path := OutputPath(outDir, route)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrapf(err, "creating directory for %s", route)
	}

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}

	return path, nil
}
