package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/gobuffalo/plush"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Router serves the site's pages as bare markup, one handler per route and
// locale. It is the in-process render function of the prerender pipeline.
type Router struct {
	*mux.Router

	site         *config.SiteManifest
	translations map[string]map[string]string
	registered   []string
}

func SetupRouter(site *config.SiteManifest) (*Router, error) {
	r := &Router{
		Router: mux.NewRouter(),
		site:   site,
	}

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	var err error
	r.translations, err = loadTranslations(site.Renderer.PagesDir, site.Renderer.Translations)
	if err != nil {
		return nil, errors.Wrap(err, "loading translations")
	}

	langPrefix := ""
	if prefixed := site.PrefixedLocales(); len(prefixed) > 0 {
		langPrefix = "/{lang:" + strings.Join(prefixed, "|") + "}"
	}

	for _, page := range site.Renderer.Pages {
		if strings.Contains(page.Path, ":slug") {
			if err := r.setupSlugRoutes(page); err != nil {
				return nil, errors.Wrapf(err, "setting up %s", page.Path)
			}
			continue
		}

		page.Source = filepath.Join(site.Renderer.PagesDir, page.Source)
		handler := r.DynamicHandler(page, "")
		r.HandleFunc(page.Path, handler).Methods(http.MethodGet)
		r.registered = append(r.registered, page.Path)

		if langPrefix != "" {
			prefixed := langPrefix + page.Path
			if page.Path == "/" {
				prefixed = langPrefix
			}
			r.HandleFunc(prefixed, handler).Methods(http.MethodGet)
			r.registered = append(r.registered, prefixed)
		}
	}

	return r, nil
}

// RegisteredRoutes lists the path templates the router answers.
func (r *Router) RegisteredRoutes() []string {
	return r.registered
}

// setupSlugRoutes registers one route per locale for every directory under the
// page's source, e.g. projects/uala/{en,es}.md.
func (r *Router) setupSlugRoutes(page config.Page) error {
	dirs, err := filepath.Glob(filepath.Join(r.site.Renderer.PagesDir, page.Source, "*"))
	if err != nil {
		return errors.WithStack(err)
	}

	ext := ".md"
	if page.TemplateType == config.TemplatePlush {
		ext = ".plush.html"
	}

	for _, dir := range dirs {
		isDir, err := isDirectory(dir)
		if err != nil {
			return errors.WithStack(err)
		}
		if !isDir {
			continue
		}

		slug := filepath.Base(dir)
		path := strings.Replace(page.Path, ":slug", slug, 1)

		for _, lang := range r.site.LocaleCodes() {
			route := localizedPath(r.site, lang, path)
			r.HandleFunc(route, r.DynamicHandler(config.Page{
				Path:         path,
				Source:       filepath.Join(dir, lang+ext),
				TemplateType: page.TemplateType,
			}, lang)).Methods(http.MethodGet)
			r.registered = append(r.registered, route)
		}
	}

	return nil
}

func loadTranslations(dir string, sources []config.Translation) (map[string]map[string]string, error) {
	translations := make(map[string]map[string]string)

	for _, source := range sources {
		data, err := os.ReadFile(filepath.Join(dir, source.Source))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		var langTranslations map[string]string
		if err := yaml.Unmarshal(data, &langTranslations); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", source.Source)
		}

		translations[source.Code] = langTranslations
	}

	return translations, nil
}

// DynamicHandler renders a page. A non-empty lang pins the locale, otherwise it
// comes from the {lang} route variable and defaults to the site default.
func (r *Router) DynamicHandler(page config.Page, lang string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := plush.NewContext()
		vars := mux.Vars(req)
		ctx.Set("params", vars)
		ctx.Set("registeredRoutes", r.registered)

		lang := lang
		if lang == "" {
			lang = vars["lang"]
		}
		if lang == "" {
			lang = r.site.DefaultLocale
		}

		// Add translation helper
		ctx.Set("text", func(key string) string {
			if t, ok := r.translations[lang][key]; ok {
				return t
			}
			return key
		})

		ctx.Set("lang", lang)
		ctx.Set("supportedLangs", r.site.LocaleCodes())
		ctx.Set("appOrigin", r.site.Origin)
		ctx.Set("currentPath", req.URL.Path)
		ctx.Set("canonical", r.site.AbsoluteURL(req.URL.Path))

		// Same page in another locale
		ctx.Set("localePath", func(code string) string {
			return localizedPath(r.site, code, page.Path)
		})

		ctx.Set("startsWith", func(s string, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		})

		ctx.Set("matches", func(s string, pat string) bool {
			re, err := regexp.Compile(pat)
			return err == nil && re.MatchString(s)
		})

		ctx.Set("replace", func(s string, old string, n string) string {
			return strings.Replace(s, old, n, 1)
		})

		ctx.Set("replaceAll", func(s string, old string, n string) string {
			return strings.ReplaceAll(s, old, n)
		})

		ctx.Set("title", "")
		ctx.Set("description", "")

		var content string
		var err error

		switch page.TemplateType {
		case config.TemplatePlush:
			content, err = renderPlushTemplate(page.Source, ctx)
		case config.TemplateMarkdown:
			var title, desc string
			content, title, desc, err = renderMarkdownTemplate(page.Source)
			ctx.Set("title", title)
			ctx.Set("description", desc)
		default:
			http.Error(w, "Unsupported template type", http.StatusInternalServerError)
			return
		}

		if err != nil {
			http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
			return
		}

		if layout := r.site.Renderer.Layout; layout != "" {
			ctx.Set("yield", template.HTML(content))
			content, err = renderPlushTemplate(filepath.Join(r.site.Renderer.PagesDir, layout), ctx)
			if err != nil {
				http.Error(w, fmt.Sprintf("Error executing layout: %v", err), http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(content)); err != nil {
			http.Error(w, fmt.Sprintf("Error writing response: %v", err), http.StatusInternalServerError)
		}
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "no page registered for "+r.URL.Path, http.StatusNotFound)
}

func renderPlushTemplate(source string, ctx *plush.Context) (string, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}

	template, err := plush.Parse(string(content))
	if err != nil {
		return "", errors.Wrapf(err, "parsing %s", source)
	}

	return template.Exec(ctx)
}

// renderMarkdownTemplate renders a case study: yaml frontmatter, a --- line,
// then the markdown body.
func renderMarkdownTemplate(source string) (string, string, string, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return "", "", "", err
	}

	text := strings.TrimPrefix(strings.ReplaceAll(string(content), "\r\n", "\n"), "---\n")
	parts := strings.SplitN(text, "\n---\n", 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("invalid Markdown file format: %s", source)
	}

	var metadata map[string]string
	if err := yaml.Unmarshal([]byte(parts[0]), &metadata); err != nil {
		return "", "", "", fmt.Errorf("error parsing frontmatter: %v", err)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	htmlContent := markdown.ToHTML([]byte(parts[1]), p, nil)
	contentHtml := strings.Replace(`<article class="project">
[content]</article>`, "[content]", string(htmlContent), 1)

	return contentHtml, metadata["title"], metadata["description"], nil
}

func localizedPath(site *config.SiteManifest, lang, path string) string {
	if lang == site.DefaultLocale {
		return path
	}
	if path == "/" {
		return "/" + lang
	}
	return "/" + lang + path
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
