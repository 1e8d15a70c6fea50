package prerender

import (
	"strings"

	"golang.org/x/net/html"
)

// Injection reports where Inject placed the markup.
type Injection int

const (
	InjectionNone Injection = iota
	InjectionMarker
	InjectionMount
)

func (i Injection) String() string {
	switch i {
	case InjectionMarker:
		return "marker"
	case InjectionMount:
		return "mount"
	default:
		return "none"
	}
}

// Inject places markup at the outlet marker. Without a marker it replaces the
// inner content of the element whose id is mountID, nested children included.
// When neither is present doc is returned unchanged with InjectionNone.
func Inject(doc, markup, marker, mountID string) (string, Injection) {
	if marker != "" {
		if i := strings.Index(doc, marker); i >= 0 {
			return doc[:i] + markup + doc[i+len(marker):], InjectionMarker
		}
	}

	if mountID != "" {
		if start, end, ok := mountBounds(doc, mountID); ok {
			return doc[:start] + markup + doc[end:], InjectionMount
		}
	}

	return doc, InjectionNone
}

// mountBounds returns the byte span between the mount element's start tag and
// its matching end tag.
func mountBounds(doc, id string) (int, int, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))

	var (
		offset int
		inner  = -1
		depth  int
		tag    string
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, 0, false
		}
		size := len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch {
			case inner < 0 && hasAttr && hasID(z, id):
				tag = string(name)
				inner = offset + size
				depth = 1
			case inner >= 0 && string(name) == tag:
				depth++
			}
		case html.EndTagToken:
			if inner < 0 {
				break
			}
			if name, _ := z.TagName(); string(name) == tag {
				depth--
				if depth == 0 {
					return inner, offset, true
				}
			}
		}

		offset += size
	}
}

func hasID(z *html.Tokenizer, id string) bool {
	for more := true; more; {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) == "id" && string(val) == id {
			return true
		}
	}
	return false
}
