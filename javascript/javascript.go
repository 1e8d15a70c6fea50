package javascript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/errors"
)

var isProd = os.Getenv("NODE_ENV") == "production"

// CompileJSTarget bundles every target into <outRoot>/<out_dir> with a content
// hash in the file name, and returns target name -> public path.
func CompileJSTarget(targets map[string]config.JavascriptTarget, outRoot string) (map[string]string, error) {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	emitted := make(map[string]string, len(targets))
	for _, targetName := range names {
		target := targets[targetName]
		outDir, err := filepath.Abs(filepath.Join(outRoot, target.OutDir))
		if err != nil {
			return nil, errors.WithStack(err)
		}

		result := api.Build(api.BuildOptions{
			EntryPoints:       []string{target.Source},
			Bundle:            true,
			Format:            api.FormatESModule,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
			Engines: []api.Engine{
				{Name: api.EngineChrome, Version: "100"},
				{Name: api.EngineFirefox, Version: "100"},
				{Name: api.EngineSafari, Version: "15"},
				{Name: api.EngineEdge, Version: "100"},
			},
			Define:    map[string]string{"process.env.NODE_ENV": nodeEnv()},
			Sourcemap: api.SourceMapExternal,
			Write:     false,
			Outdir:    outDir,
		})

		if len(result.Errors) > 0 {
			msgs := make([]string, 0, len(result.Errors))
			for _, msg := range result.Errors {
				msgs = append(msgs, msg.Text)
			}
			return nil, errors.Errorf("bundling %s: %s", targetName, strings.Join(msgs, "; "))
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating %s", outDir)
		}

		// Separate files with and without .map extension
		var regularFiles []api.OutputFile
		var mapFiles []api.OutputFile

		for _, out := range result.OutputFiles {
			ext := filepath.Ext(out.Path)
			if strings.EqualFold(ext, ".map") {
				mapFiles = append(mapFiles, out)
			} else {
				regularFiles = append(regularFiles, out)
			}
		}

		// Concatenate regular files followed by .map files
		sortedFiles := append(regularFiles, mapFiles...)

		srcToHash := make(map[string]string)

		for _, out := range sortedFiles {
			// Modify the file path to include the hash
			dir := filepath.Dir(out.Path)
			base := filepath.Base(out.Path)
			ext := base[strings.Index(base, "."):]
			isMap := strings.HasSuffix(ext, ".map")
			fileNameWithoutExt := base[:len(base)-len(ext)]

			var hashForFileName string
			if isMap {
				hashForFileName = srcToHash[fileNameWithoutExt]
				if hashForFileName == "" {
					msg := fmt.Sprintf("source map %s can not find hash for it's source file", fileNameWithoutExt)
					return nil, errors.New(msg)
				}
			} else {
				safeHash := strings.NewReplacer("/", "", "+", "", "=", "").Replace(out.Hash)
				srcToHash[fileNameWithoutExt] = safeHash
				hashForFileName = safeHash
			}

			name := fmt.Sprintf("%s_%s%s", fileNameWithoutExt, hashForFileName, ext)
			newPath := filepath.Join(dir, name)

			var fileContentB []byte
			if isMap {
				fileContentB = out.Contents
			} else {
				srcMap := fmt.Sprintf("//# sourceMappingURL=%s.map", name)
				fileContentB = []byte(string(out.Contents) + srcMap)
			}

			if err := os.WriteFile(newPath, fileContentB, 0644); err != nil {
				return nil, errors.Wrapf(err, "writing %s", newPath)
			}

			if !isMap {
				publicPath := "/" + filepath.ToSlash(filepath.Join(target.OutDir, name))
				emitted[targetName] = publicPath
			}
		}
	}

	return emitted, nil
}

func nodeEnv() string {
	if isProd {
		return `"production"`
	}
	return `"development"`
}
