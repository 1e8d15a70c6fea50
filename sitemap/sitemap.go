package sitemap

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/ZacxDev/agency-prerender/prerender"
	"github.com/pkg/errors"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Xhtml   string   `xml:"xmlns:xhtml,attr"`
	URLs    []URL    `xml:"url"`
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	Alternates []Link `xml:"xhtml:link"`
}

type Link struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Write renders the sitemap for site.Routes into <outDir>/sitemap.xml and
// returns the file path.
func Write(outDir string, site *config.SiteManifest) (string, error) {
	content, err := Content(site)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating %s", outDir)
	}

	path := filepath.Join(outDir, "sitemap.xml")
	if err := os.WriteFile(path, []byte(xml.Header+content+"\n"), 0644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

// Content is the urlset document without the XML header. Every route carries
// the same alternates as its hreflang links.
func Content(site *config.SiteManifest) (string, error) {
	set := URLSet{
		Xmlns: sitemapNS,
		Xhtml: xhtmlNS,
	}

	for _, route := range site.Routes {
		base := prerender.BasePath(site, route)

		url := URL{
			Loc:     site.AbsoluteURL(route),
			LastMod: site.Sitemap.LastMod,
		}
		for _, code := range site.LocaleCodes() {
			url.Alternates = append(url.Alternates, Link{
				Rel:      "alternate",
				Hreflang: code,
				Href:     site.AbsoluteURL(prerender.LocalizedPath(site, code, base)),
			})
		}
		url.Alternates = append(url.Alternates, Link{
			Rel:      "alternate",
			Hreflang: "x-default",
			Href:     site.AbsoluteURL(prerender.LocalizedPath(site, site.DefaultLocale, base)),
		})

		set.URLs = append(set.URLs, url)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding sitemap")
	}
	return string(out), nil
}
