package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())

	assert.Equal(t, "es", m.DefaultLocale)
	assert.Equal(t, []string{"en", "es"}, m.LocaleCodes())
	assert.Equal(t, []string{"en"}, m.PrefixedLocales())
	assert.Len(t, m.Routes, 8)
	assert.Equal(t, "es_ES", m.Locales["es"].OGLocale)
	assert.Equal(t, "en_US", m.Locales["en"].OGLocale)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prerender.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
origin: https://example.test/
routes:
  - /
  - /en/projects/uala
renderer:
  kind: http
  endpoint: http://localhost:5173/render
  timeout: 3s
`), 0644))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/", m.Origin)
	assert.Equal(t, []string{"/", "/en/projects/uala"}, m.Routes)
	assert.Equal(t, RendererHTTP, m.Renderer.Kind)
	assert.Equal(t, 3*time.Second, m.Renderer.Timeout)
	// untouched keys keep their defaults
	assert.Equal(t, "dist/index.html", m.Template)
	assert.Equal(t, "<!--app-html-->", m.OutletMarker)
	assert.Len(t, m.Locales, 2)
}

func TestLoadReplacesLocales(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_locale: pt
locales:
  pt: {title: Estúdio, description: Agência digital, og_locale: pt_BR}
`), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pt"}, m.LocaleCodes())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("routes: [/, /]\n"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate route")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteManifest)
		want   string
	}{
		{"relative origin", func(m *SiteManifest) { m.Origin = "/site" }, "origin"},
		{"missing default locale", func(m *SiteManifest) { m.DefaultLocale = "fr" }, "default locale"},
		{"empty copy", func(m *SiteManifest) { m.Locales["en"] = LocaleCopy{} }, "title and a description"},
		{"no routes", func(m *SiteManifest) { m.Routes = nil }, "no routes"},
		{"unknown renderer", func(m *SiteManifest) { m.Renderer.Kind = "wasm" }, "unknown renderer"},
		{"http without endpoint", func(m *SiteManifest) { m.Renderer.Kind = RendererHTTP }, "endpoint"},
		{"bad template type", func(m *SiteManifest) {
			m.Renderer.Pages = []Page{{Path: "/", TemplateType: "ERB"}}
		}, "unsupported template type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRoutePath(t *testing.T) {
	for _, ok := range []string{"/", "/en", "/projects/uala", "/en/projects/chester"} {
		assert.NoError(t, ValidateRoutePath(ok), ok)
	}
	for _, bad := range []string{"", "en", "/en/", "//x", "/a?b", "/a#b", "/a/*", "/../etc"} {
		assert.Error(t, ValidateRoutePath(bad), bad)
	}
}

func TestAbsoluteURL(t *testing.T) {
	m := Default()
	m.Origin = "https://example.test/"
	assert.Equal(t, "https://example.test/", m.AbsoluteURL("/"))
	assert.Equal(t, "https://example.test/en/projects/unaje", m.AbsoluteURL("/en/projects/unaje"))
}
