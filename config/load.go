package config

import (
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "prerender.yaml"

const defaultFallbackHTML = `<div style="padding:2rem;text-align:center;font-family:sans-serif">` +
	`<p>Esta página necesita JavaScript para ofrecer la experiencia completa. / ` +
	`This page requires JavaScript for the full experience.</p></div>`

// Default returns the manifest the site ships with.
func Default() *SiteManifest {
	return &SiteManifest{
		Origin:        "https://www.estudionomade.com",
		DefaultLocale: "es",
		Template:      "dist/index.html",
		OutDir:        "dist",
		OutletMarker:  "<!--app-html-->",
		MountID:       "root",
		FallbackHTML:  defaultFallbackHTML,
		Routes: []string{
			"/",
			"/en",
			"/projects/uala",
			"/projects/chester",
			"/projects/unaje",
			"/en/projects/uala",
			"/en/projects/chester",
			"/en/projects/unaje",
		},
		Locales: map[string]LocaleCopy{
			"en": {
				Title:       "Estudio Nómade | Digital Agency",
				Description: "We design and build websites, products and brands that grow with your business.",
				OGLocale:    "en_US",
			},
			"es": {
				Title:       "Estudio Nómade | Agencia Digital",
				Description: "Diseñamos y desarrollamos sitios, productos y marcas que crecen con tu negocio.",
				OGLocale:    "es_ES",
			},
		},
		Renderer: Renderer{
			Kind:     RendererPages,
			PagesDir: "site",
			Pages: []Page{
				{Path: "/", Source: "pages/home.plush.html", TemplateType: TemplatePlush},
				{Path: "/projects/:slug", Source: "projects", TemplateType: TemplateMarkdown},
			},
			Translations: []Translation{
				{Code: "en", Source: "translations/en.yaml"},
				{Code: "es", Source: "translations/es.yaml"},
			},
			Selector: "#root",
			Timeout:  15 * time.Second,
		},
		Sitemap: Sitemap{Enabled: true},
	}
}

// Load reads the manifest at path over the defaults. An empty path falls back to
// DefaultFile when it exists, and to the bare defaults otherwise.
func Load(path string) (*SiteManifest, error) {
	manifest := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return manifest, manifest.Validate()
		}
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	// yaml.v2 merges into non-nil maps; a manifest that lists locales replaces them.
	var probe struct {
		Locales map[string]LocaleCopy `yaml:"locales"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	if len(probe.Locales) > 0 {
		manifest.Locales = nil
	}

	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}

	if err := manifest.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}

	return manifest, nil
}

func (m *SiteManifest) Validate() error {
	u, err := url.Parse(m.Origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("origin %q must be an absolute http(s) URL", m.Origin)
	}

	if len(m.Locales) == 0 {
		return errors.New("at least one locale is required")
	}
	if _, ok := m.Locales[m.DefaultLocale]; !ok {
		return errors.Errorf("default locale %q has no copy", m.DefaultLocale)
	}
	for code, lc := range m.Locales {
		if code == "" || strings.Contains(code, "/") {
			return errors.Errorf("invalid locale code %q", code)
		}
		if lc.Title == "" || lc.Description == "" {
			return errors.Errorf("locale %q needs a title and a description", code)
		}
	}

	if m.Template == "" || m.OutDir == "" {
		return errors.New("template and out_dir are required")
	}

	if len(m.Routes) == 0 {
		return errors.New("no routes to prerender")
	}
	seen := make(map[string]bool, len(m.Routes))
	for _, route := range m.Routes {
		if err := ValidateRoutePath(route); err != nil {
			return errors.Wrapf(err, "route %q", route)
		}
		if seen[route] {
			return errors.Errorf("duplicate route %q", route)
		}
		seen[route] = true
	}

	switch m.Renderer.Kind {
	case RendererPages:
		for _, page := range m.Renderer.Pages {
			if page.TemplateType != TemplatePlush && page.TemplateType != TemplateMarkdown {
				return errors.Errorf("page %s: unsupported template type %q", page.Path, page.TemplateType)
			}
		}
	case RendererHTTP:
		if m.Renderer.Endpoint == "" {
			return errors.New("renderer endpoint is required for the http renderer")
		}
	case RendererBrowser:
		if m.Renderer.Selector == "" {
			return errors.New("renderer selector is required for the browser renderer")
		}
	default:
		return errors.Errorf("unknown renderer kind %q", m.Renderer.Kind)
	}

	return nil
}

// ValidateRoutePath accepts clean absolute paths only.
func ValidateRoutePath(path string) error {
	switch {
	case path == "":
		return errors.New("path cannot be empty")
	case !strings.HasPrefix(path, "/"):
		return errors.New("path must start with /")
	case path != "/" && strings.HasSuffix(path, "/"):
		return errors.New("path cannot end with /")
	case strings.Contains(path, "//"):
		return errors.New("path cannot contain empty segments")
	case strings.ContainsAny(path, "?#*"):
		return errors.New("path cannot contain a query, fragment or wildcard")
	case strings.Contains(path, ".."):
		return errors.New("path cannot contain parent directory references")
	}
	return nil
}

// LocaleCodes returns the configured locale codes in sorted order.
func (m *SiteManifest) LocaleCodes() []string {
	codes := make([]string, 0, len(m.Locales))
	for code := range m.Locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// PrefixedLocales returns every locale except the default one, sorted.
func (m *SiteManifest) PrefixedLocales() []string {
	var codes []string
	for _, code := range m.LocaleCodes() {
		if code != m.DefaultLocale {
			codes = append(codes, code)
		}
	}
	return codes
}

// AbsoluteURL joins the origin and a route without adding or doubling slashes.
func (m *SiteManifest) AbsoluteURL(route string) string {
	return strings.TrimRight(m.Origin, "/") + route
}
