package cmd

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/ZacxDev/agency-prerender/handlers"
	"github.com/ZacxDev/agency-prerender/javascript"
	"github.com/ZacxDev/agency-prerender/logging"
	"github.com/ZacxDev/agency-prerender/metrics"
	"github.com/ZacxDev/agency-prerender/prerender"
	"github.com/ZacxDev/agency-prerender/preview"
	"github.com/ZacxDev/agency-prerender/renderer"
	"github.com/ZacxDev/agency-prerender/sitemap"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var prerenderCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Render every route into <out_dir>/<route>/index.html",
	RunE:  runPrerender,
}

func init() {
	rootCmd.AddCommand(prerenderCmd)
}

func runPrerender(cmd *cobra.Command, _ []string) error {
	site, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return prerenderSite(cmd.Context(), site, logger)
}

// prerenderSite runs one full generation: bundle, render, sitemap, metrics.
func prerenderSite(ctx context.Context, site *config.SiteManifest, logger *zap.Logger) error {
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	render, closeRenderer, err := buildRenderer(ctx, site)
	if err != nil {
		return err
	}
	defer closeRenderer()

	opts := []prerender.Option{prerender.WithLogger(logger)}

	if len(site.Javascript) > 0 {
		scripts, err := javascript.CompileJSTarget(site.Javascript, site.OutDir)
		if err != nil {
			return err
		}
		for name, path := range scripts {
			logger.Debug("Bundled script", zap.String("target", name), zap.String("path", path))
		}
		opts = append(opts, prerender.WithScripts(scripts))
	}

	var recorder *metrics.PrometheusRecorder
	if site.Metrics.Textfile != "" {
		recorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		opts = append(opts, prerender.WithRecorder(recorder))
	}

	if _, err := prerender.New(site, render, opts...).Run(ctx); err != nil {
		return err
	}

	if site.Sitemap.Enabled {
		path, err := sitemap.Write(site.OutDir, site)
		if err != nil {
			return err
		}
		logger.Info("Wrote sitemap", zap.String("path", path))
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(site.Metrics.Textfile); err != nil {
			return err
		}
		logger.Debug("Wrote metrics", zap.String("path", site.Metrics.Textfile))
	}

	return nil
}

func buildRenderer(ctx context.Context, site *config.SiteManifest) (prerender.Renderer, func(), error) {
	opts := site.Renderer

	switch opts.Kind {
	case config.RendererPages:
		pages, err := handlers.NewRenderer(site)
		if err != nil {
			return nil, nil, err
		}
		return pages, func() {}, nil

	case config.RendererHTTP:
		return renderer.NewHTTP(opts.Endpoint, opts.Socket, opts.Timeout), func() {}, nil

	case config.RendererBrowser:
		baseURL := opts.BaseURL
		stopPreview := func() {}
		if baseURL == "" {
			// Serve the built SPA so client-side routes resolve to the template.
			template, err := os.ReadFile(site.Template)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "reading template %s", site.Template)
			}
			server := httptest.NewServer(preview.Handler(filepath.Dir(site.Template), template))
			baseURL = server.URL
			stopPreview = server.Close
		}

		browser, err := renderer.NewBrowser(ctx, baseURL, opts.ControlURL, opts.Selector, opts.Timeout)
		if err != nil {
			stopPreview()
			return nil, nil, err
		}
		return browser, func() {
			_ = browser.Close()
			stopPreview()
		}, nil
	}

	return nil, nil, errors.Errorf("unknown renderer kind %q", opts.Kind)
}
