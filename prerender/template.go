package prerender

import (
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// LoadTemplate reads the HTML shell every route is built from.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading template %s", path)
	}
	return string(data), nil
}

// LinkScripts swaps each <!--js:name--> marker for a module script tag pointing
// at the bundled entry. A template that is a previous run's output has no
// markers left, so tags for an earlier build of the same entry
// (<dir>/<name>_<hash>.js) are repointed too.
func LinkScripts(template string, scripts map[string]string) string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := scripts[name]
		tag := `<script type="module" src="` + src + `"></script>`
		template = strings.ReplaceAll(template, "<!--js:"+name+"-->", tag)

		previous := regexp.MustCompile(`<script type="module" src="` +
			regexp.QuoteMeta(path.Dir(src)+"/"+name+"_") + `[A-Za-z0-9]+\.js"></script>`)
		template = previous.ReplaceAllLiteralString(template, tag)
	}
	return template
}
