package prerender

import (
	"regexp"
	"strings"

	"github.com/ZacxDev/agency-prerender/config"
	"golang.org/x/net/html"
)

var (
	htmlTagPattern   = regexp.MustCompile(`(?i)<html\b[^>]*>`)
	titlePattern     = regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title>`)
	canonicalPattern = regexp.MustCompile(`(?i)<link\b[^>]*\brel\s*=\s*["']canonical["'][^>]*>`)
	alternatePattern = regexp.MustCompile(`(?i)\s*<link\b[^>]*\bhreflang\s*=\s*["'][^"']*["'][^>]*>`)
	headOpenPattern  = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	headClosePattern = regexp.MustCompile(`(?i)</head\s*>`)
	bodyOpenPattern  = regexp.MustCompile(`(?i)<body\b[^>]*>`)

	langAttr    = attrPattern("lang")
	contentAttr = attrPattern("content")
	hrefAttr    = attrPattern("href")
)

// pageMeta is the copy a single route's head is rewritten with.
type pageMeta struct {
	copy config.LocaleCopy
	url  string
}

type metaField struct {
	key     string
	pattern *regexp.Regexp
	value   func(pageMeta) string
}

func newMetaField(key string, value func(pageMeta) string) metaField {
	return metaField{
		key:     key,
		pattern: regexp.MustCompile(`(?i)<meta\b[^>]*\b(?:name|property)\s*=\s*["']` + regexp.QuoteMeta(key) + `["'][^>]*>`),
		value:   value,
	}
}

func title(m pageMeta) string       { return m.copy.Title }
func description(m pageMeta) string { return m.copy.Description }
func pageURL(m pageMeta) string     { return m.url }

var metaFields = []metaField{
	newMetaField("description", description),
	newMetaField("title", title),
	newMetaField("og:url", pageURL),
	newMetaField("og:title", title),
	newMetaField("og:description", description),
	newMetaField("og:locale", func(m pageMeta) string { return m.copy.OGLocale }),
	newMetaField("twitter:url", pageURL),
	newMetaField("twitter:title", title),
	newMetaField("twitter:description", description),
}

// MetaRewriter rewrites the language-dependent head of a document for a route.
type MetaRewriter struct {
	site *config.SiteManifest
}

func NewMetaRewriter(site *config.SiteManifest) *MetaRewriter {
	return &MetaRewriter{site: site}
}

// Rewrite returns the rewritten document, the locale derived from route and the
// names of the fields it found nothing to replace for. Only the <html> start tag
// and the contents of <head> are touched, never the rendered body.
func (r *MetaRewriter) Rewrite(doc, route string) (string, string, []string) {
	locale := DetectLocale(r.site, route)
	meta := pageMeta{
		copy: r.site.Locales[locale],
		url:  r.site.AbsoluteURL(route),
	}

	var unmatched []string
	miss := func(field string, ok bool) {
		if !ok {
			unmatched = append(unmatched, field)
		}
	}

	prefix, open, head, rest, hasHead := splitHead(doc)

	var ok bool
	prefix, ok = replaceOnce(prefix, htmlTagPattern, func(tag string) string {
		return setAttr(tag, langAttr, "lang", locale)
	})
	miss("html:lang", ok)

	head, ok = replaceOnce(head, titlePattern, func(tag string) string {
		start := tag[:strings.Index(tag, ">")+1]
		return start + html.EscapeString(meta.copy.Title) + "</title>"
	})
	miss("title", ok)

	for _, field := range metaFields {
		value := field.value(meta)
		head, ok = replaceOnce(head, field.pattern, func(tag string) string {
			return setAttr(tag, contentAttr, "content", value)
		})
		miss(field.key, ok)
	}

	// Alternates are regenerated, so any left from the template or a previous
	// run are dropped first.
	head = alternatePattern.ReplaceAllString(head, "")
	alternates := r.alternates(route)

	head, ok = replaceOnce(head, canonicalPattern, func(tag string) string {
		return setAttr(tag, hrefAttr, "href", meta.url) + alternates
	})
	if !ok && hasHead {
		head += "  " + `<link rel="canonical" href="` + html.EscapeString(meta.url) + `" />` + alternates + "\n  "
		ok = true
	}
	miss("canonical", ok)

	return prefix + open + head + rest, locale, unmatched
}

// splitHead cuts doc into the part before <head>, the <head> start tag, its
// contents and everything from </head> on. Without a complete head element the
// prefix runs up to <body> (or the whole document) and head is empty.
func splitHead(doc string) (prefix, open, head, rest string, ok bool) {
	if loc := headOpenPattern.FindStringIndex(doc); loc != nil {
		if end := headClosePattern.FindStringIndex(doc[loc[1]:]); end != nil {
			closeAt := loc[1] + end[0]
			return doc[:loc[0]], doc[loc[0]:loc[1]], doc[loc[1]:closeAt], doc[closeAt:], true
		}
	}
	if loc := bodyOpenPattern.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]], "", "", doc[loc[0]:], false
	}
	return doc, "", "", "", false
}

// alternates renders one hreflang link per locale followed by x-default, each on
// its own line.
func (r *MetaRewriter) alternates(route string) string {
	base := BasePath(r.site, route)

	var b strings.Builder
	for _, code := range r.site.LocaleCodes() {
		writeAlternate(&b, code, r.site.AbsoluteURL(LocalizedPath(r.site, code, base)))
	}
	writeAlternate(&b, "x-default", r.site.AbsoluteURL(LocalizedPath(r.site, r.site.DefaultLocale, base)))
	return b.String()
}

func writeAlternate(b *strings.Builder, hreflang, href string) {
	b.WriteString("\n    <link rel=\"alternate\" hreflang=\"")
	b.WriteString(hreflang)
	b.WriteString("\" href=\"")
	b.WriteString(html.EscapeString(href))
	b.WriteString("\" />")
}

func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\s` + name + `\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'>]+)`)
}

// replaceOnce applies fn to the first match of re.
func replaceOnce(doc string, re *regexp.Regexp, fn func(string) string) (string, bool) {
	loc := re.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	return doc[:loc[0]] + fn(doc[loc[0]:loc[1]]) + doc[loc[1]:], true
}

// setAttr sets an attribute on a single start tag, appending it when absent.
func setAttr(tag string, re *regexp.Regexp, name, value string) string {
	attr := name + `="` + html.EscapeString(value) + `"`

	if loc := re.FindStringIndex(tag); loc != nil {
		return tag[:loc[0]] + " " + attr + tag[loc[1]:]
	}

	end := len(tag) - 1
	tail := ">"
	if strings.HasSuffix(tag, "/>") {
		end = len(tag) - 2
		tail = " />"
	}
	return strings.TrimRight(tag[:end], " \t\r\n") + " " + attr + tail
}
