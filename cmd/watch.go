package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/ZacxDev/agency-prerender/logging"
	"github.com/ZacxDev/agency-prerender/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Prerender, then prerender again on every change to the site sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		// The manifest is reloaded on every run so edits to it apply.
		rebuild := func(ctx context.Context) error {
			next, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return prerenderSite(ctx, next, logger)
		}

		ctx := cmd.Context()
		if err := rebuild(ctx); err != nil {
			logger.Error("Prerender failed", zap.Error(err))
		}

		debounce, _ := cmd.Flags().GetDuration("debounce")
		paths := watchPaths(site, configPath)
		logger.Info("Watching for changes", zap.Strings("paths", paths), zap.Duration("debounce", debounce))

		return watch.Run(ctx, paths, debounce, rebuild, logger)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "quiet period before re-rendering")
}

// watchPaths lists the sources a run depends on. Anything inside out_dir is left
// out, since every run writes there.
func watchPaths(site *config.SiteManifest, manifest string) []string {
	if manifest == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			manifest = config.DefaultFile
		}
	}

	var paths []string
	add := func(path string) {
		if path == "" || within(path, site.OutDir) {
			return
		}
		for _, p := range paths {
			if p == path {
				return
			}
		}
		paths = append(paths, path)
	}

	add(manifest)
	add(site.Template)
	if site.Renderer.Kind == config.RendererPages {
		add(site.Renderer.PagesDir)
		for _, t := range site.Renderer.Translations {
			if dir := filepath.Dir(filepath.Join(site.Renderer.PagesDir, t.Source)); !within(dir, site.Renderer.PagesDir) {
				add(dir)
			}
		}
	}
	for _, target := range site.Javascript {
		add(filepath.Dir(target.Source))
	}

	return paths
}

func within(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
