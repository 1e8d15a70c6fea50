package prerender

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const testOrigin = "https://example.test"

const fullTemplate = `<!doctype html>
<html lang="es">
  <head>
    <meta charset="UTF-8" />
    <title>Default title</title>
    <meta name="title" content="Default title" />
    <meta name="description" content="Default description" />
    <meta property="og:url" content="https://example.test/" />
    <meta property="og:title" content="Default title" />
    <meta property="og:description" content="Default description" />
    <meta property="og:locale" content="es_ES" />
    <meta property="twitter:url" content="https://example.test/" />
    <meta property="twitter:title" content="Default title" />
    <meta property="twitter:description" content="Default description" />
    <link rel="canonical" href="https://example.test/" />
  </head>
  <body>
    <div id="root"><!--app-html--></div>
    <!--js:client-->
  </body>
</html>
`

func testSite(t *testing.T, template string) *config.SiteManifest {
	t.Helper()

	dir := t.TempDir()
	site := config.Default()
	site.Origin = testOrigin
	site.Template = filepath.Join(dir, "template.html")
	site.OutDir = filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(site.Template, []byte(template), 0644))
	require.NoError(t, site.Validate())
	return site
}

// headValues parses doc and collects the values the rewriter is responsible for.
func headValues(t *testing.T, doc string) map[string]string {
	t.Helper()

	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	values := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				values["lang"] = attr(n, "lang")
			case "title":
				if n.FirstChild != nil {
					values["title"] = n.FirstChild.Data
				}
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				if key != "" {
					values["meta:"+key] = attr(n, "content")
				}
			case "link":
				switch {
				case attr(n, "rel") == "canonical":
					values["canonical"] = attr(n, "href")
				case attr(n, "hreflang") != "":
					values["hreflang:"+attr(n, "hreflang")] = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return values
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
