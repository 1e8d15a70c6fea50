package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testSite(t *testing.T) *config.SiteManifest {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pages", "home.plush.html"),
		`<h1 lang="<%= lang %>"><%= text("hero.title") %></h1><a href="<%= localePath("en") %>"><%= canonical %></a>`)
	writeFile(t, filepath.Join(dir, "translations", "es.yaml"), "hero.title: Hacemos marcas\n")
	writeFile(t, filepath.Join(dir, "translations", "en.yaml"), "hero.title: We build brands\n")
	writeFile(t, filepath.Join(dir, "projects", "uala", "es.md"), `title: Ualá
description: Billetera digital
---
# Ualá

Rediseño de la **app**.
`)
	writeFile(t, filepath.Join(dir, "projects", "uala", "en.md"), `---
title: Ualá
description: Digital wallet
---
# Ualá

Redesign of the **app**.
`)
	writeFile(t, filepath.Join(dir, "projects", "README.md"), "not a project")

	site := config.Default()
	site.Origin = "https://example.test"
	site.Renderer.PagesDir = dir
	require.NoError(t, site.Validate())
	return site
}

func TestRendererPlushPages(t *testing.T) {
	r, err := NewRenderer(testSite(t))
	require.NoError(t, err)

	es, err := r.Render(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, `<h1 lang="es">Hacemos marcas</h1><a href="/en">https://example.test/</a>`, es)

	en, err := r.Render(context.Background(), "/en")
	require.NoError(t, err)
	assert.Equal(t, `<h1 lang="en">We build brands</h1><a href="/en">https://example.test/en</a>`, en)
}

func TestRendererMarkdownProjects(t *testing.T) {
	r, err := NewRenderer(testSite(t))
	require.NoError(t, err)

	es, err := r.Render(context.Background(), "/projects/uala")
	require.NoError(t, err)
	assert.Contains(t, es, `<article class="project">`)
	assert.Contains(t, es, "<strong>app</strong>")
	assert.Contains(t, es, "Rediseño")

	en, err := r.Render(context.Background(), "/en/projects/uala")
	require.NoError(t, err)
	assert.Contains(t, en, "Redesign of the")
}

func TestRendererUnknownRoute(t *testing.T) {
	r, err := NewRenderer(testSite(t))
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "/projects/chester")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, err = r.Render(context.Background(), "/projects/README.md")
	require.Error(t, err)
}

func TestRendererTemplateErrors(t *testing.T) {
	site := testSite(t)
	writeFile(t, filepath.Join(site.Renderer.PagesDir, "projects", "broken", "es.md"), "no frontmatter here")

	r, err := NewRenderer(site)
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "/projects/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "invalid Markdown file format")

	// en.md was never written
	_, err = r.Render(context.Background(), "/en/projects/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRendererLayout(t *testing.T) {
	site := testSite(t)
	site.Renderer.Layout = "layout.plush.html"
	writeFile(t, filepath.Join(site.Renderer.PagesDir, "layout.plush.html"),
		`<main data-title="<%= title %>"><%= yield %></main>`)

	r, err := NewRenderer(site)
	require.NoError(t, err)

	got, err := r.Render(context.Background(), "/en/projects/uala")
	require.NoError(t, err)
	assert.Contains(t, got, `<main data-title="Ualá"><article class="project">`)
}

func TestRegisteredRoutes(t *testing.T) {
	router, err := SetupRouter(testSite(t))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"/",
		"/{lang:en}",
		"/en/projects/uala",
		"/projects/uala",
	}, router.RegisteredRoutes())
}

func TestMissingTranslationsFallBackToKeys(t *testing.T) {
	site := testSite(t)
	require.NoError(t, os.Remove(filepath.Join(site.Renderer.PagesDir, "translations", "en.yaml")))

	r, err := NewRenderer(site)
	require.NoError(t, err)

	en, err := r.Render(context.Background(), "/en")
	require.NoError(t, err)
	assert.Contains(t, en, "hero.title")
}
