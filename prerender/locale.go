package prerender

import (
	"strings"

	"github.com/ZacxDev/agency-prerender/config"
)

// DetectLocale returns the route's first path segment when it names a configured
// locale, and the default locale otherwise. The test is segment-bounded, so
// /english-page resolves to the default.
func DetectLocale(site *config.SiteManifest, route string) string {
	if code, ok := localeSegment(site, route); ok {
		return code
	}
	return site.DefaultLocale
}

// BasePath strips a leading locale segment from route. The bare root of a
// locale maps to "/".
func BasePath(site *config.SiteManifest, route string) string {
	code, ok := localeSegment(site, route)
	if !ok {
		return route
	}
	base := strings.TrimPrefix(route, "/"+code)
	if base == "" {
		return "/"
	}
	return base
}

// LocalizedPath is the route of base in the given locale. The default locale is
// served unprefixed.
func LocalizedPath(site *config.SiteManifest, code, base string) string {
	if code == site.DefaultLocale {
		return base
	}
	if base == "/" {
		return "/" + code
	}
	return "/" + code + base
}

func localeSegment(site *config.SiteManifest, route string) (string, bool) {
	segment, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if segment == "" {
		return "", false
	}
	_, ok := site.Locales[segment]
	return segment, ok
}
