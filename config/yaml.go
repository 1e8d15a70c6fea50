package config

import "time"

// config/yaml.go

const (
	RendererPages   = "pages"
	RendererHTTP    = "http"
	RendererBrowser = "browser"

	TemplatePlush    = "PLUSH"
	TemplateMarkdown = "MARKDOWN"
)

type JavascriptTarget struct {
	Source string `yaml:"source"`
	OutDir string `yaml:"out_dir"`
}

type LocaleCopy struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	OGLocale    string `yaml:"og_locale"`
}

type SiteManifest struct {
	Origin        string                      `yaml:"origin"`
	DefaultLocale string                      `yaml:"default_locale"`
	Template      string                      `yaml:"template"`
	OutDir        string                      `yaml:"out_dir"`
	OutletMarker  string                      `yaml:"outlet_marker"`
	MountID       string                      `yaml:"mount_id"`
	FallbackHTML  string                      `yaml:"fallback_html"`
	Routes        []string                    `yaml:"routes"`
	Locales       map[string]LocaleCopy       `yaml:"locales"`
	Renderer      Renderer                    `yaml:"renderer"`
	Javascript    map[string]JavascriptTarget `yaml:"javascript"`
	Sitemap       Sitemap                     `yaml:"sitemap"`
	Metrics       Metrics                     `yaml:"metrics"`
}

type Renderer struct {
	Kind         string        `yaml:"kind"`
	PagesDir     string        `yaml:"pages_dir"`
	Layout       string        `yaml:"layout"`
	Pages        []Page        `yaml:"pages"`
	Translations []Translation `yaml:"translations"`
	Endpoint     string        `yaml:"endpoint"`
	Socket       string        `yaml:"socket"`
	BaseURL      string        `yaml:"base_url"`
	ControlURL   string        `yaml:"control_url"`
	Selector     string        `yaml:"selector"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Page struct {
	Path         string `yaml:"path"`
	Source       string `yaml:"source"`
	TemplateType string `yaml:"template_type"`
}

type Translation struct {
	Code   string `yaml:"code"`
	Source string `yaml:"source"`
}

type Sitemap struct {
	Enabled bool   `yaml:"enabled"`
	LastMod string `yaml:"lastmod"`
}

type Metrics struct {
	Textfile string `yaml:"textfile"`
}
