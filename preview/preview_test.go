package preview

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for path, body := range map[string]string{
		"index.html":                  "home",
		"en/projects/uala/index.html": "uala en",
		"assets/client_abc.js":        "console.log(1)",
	} {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0644))
	}
	return dir
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandlerServesRoutes(t *testing.T) {
	h := Handler(outputTree(t), nil)

	code, body := get(t, h, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "home", body)

	code, body = get(t, h, "/en/projects/uala")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "uala en", body)

	code, body = get(t, h, "/assets/client_abc.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "console.log(1)", body)
}

func TestHandlerNotFound(t *testing.T) {
	dir := outputTree(t)
	h := Handler(dir, nil)

	code, _ := get(t, h, "/projects/chester")
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "404.html"), []byte("lost"), 0644))
	code, body := get(t, h, "/nowhere")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "lost", body)
}

func TestHandlerSPAFallback(t *testing.T) {
	h := Handler(outputTree(t), []byte("<div id=\"root\"></div>"))

	code, body := get(t, h, "/projects/chester")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<div id=\"root\"></div>", body)
}

func TestHandlerStaysInsideDir(t *testing.T) {
	h := Handler(outputTree(t), nil)

	code, _ := get(t, h, "/../../etc/passwd")
	assert.Equal(t, http.StatusNotFound, code)
}
