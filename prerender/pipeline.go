package prerender

import (
	"context"
	"strings"
	"time"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/ZacxDev/agency-prerender/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Renderer produces the inner markup for a route. An error or a panic only
// costs that route its content: the pipeline falls back to the notice.
type Renderer interface {
	Render(ctx context.Context, route string) (string, error)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(ctx context.Context, route string) (string, error)

func (f RenderFunc) Render(ctx context.Context, route string) (string, error) {
	return f(ctx, route)
}

// PageResult describes how one route was generated.
type PageResult struct {
	Route     string
	Locale    string
	Path      string
	Fallback  bool
	RenderErr error
	Injection Injection
	Unmatched []string
}

type Report struct {
	Pages    []PageResult
	Duration time.Duration
}

// Fallbacks returns the routes that were written with the fallback notice.
func (r *Report) Fallbacks() []string {
	var routes []string
	for _, page := range r.Pages {
		if page.Fallback {
			routes = append(routes, page.Route)
		}
	}
	return routes
}

type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = recorder }
}

// WithScripts links bundled entries (name -> public path) into the template.
func WithScripts(scripts map[string]string) Option {
	return func(p *Pipeline) { p.scripts = scripts }
}

type Pipeline struct {
	site     *config.SiteManifest
	renderer Renderer
	rewriter *MetaRewriter
	logger   *zap.Logger
	recorder metrics.Recorder
	scripts  map[string]string
}

func New(site *config.SiteManifest, renderer Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		site:     site,
		renderer: renderer,
		rewriter: NewMetaRewriter(site),
		logger:   zap.NewNop(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run prerenders every route in order. The first error that is not a render
// failure aborts the batch.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	template, err := LoadTemplate(p.site.Template)
	if err != nil {
		return nil, err
	}
	if len(p.scripts) > 0 {
		template = LinkScripts(template, p.scripts)
	}

	report := &Report{Pages: make([]PageResult, 0, len(p.site.Routes))}

	for _, route := range p.site.Routes {
		if err := ctx.Err(); err != nil {
			return report, errors.WithStack(err)
		}

		routeStart := time.Now()
		page, err := p.generate(ctx, template, route)
		if err != nil {
			return report, err
		}
		p.recorder.ObserveRouteDuration(route, time.Since(routeStart))

		report.Pages = append(report.Pages, page)
	}

	report.Duration = time.Since(start)
	p.recorder.ObserveRunDuration(report.Duration)
	p.logger.Info("Prerender finished",
		zap.Int("pages", len(report.Pages)),
		zap.Int("fallbacks", len(report.Fallbacks())),
		zap.Duration("took", report.Duration))

	return report, nil
}

func (p *Pipeline) generate(ctx context.Context, template, route string) (PageResult, error) {
	logger := p.logger.With(zap.String("route", route))
	page := PageResult{Route: route}

	markup, err := p.render(ctx, route)
	if err != nil {
		page.RenderErr = err
		logger.Warn("Render failed, using fallback", zap.Error(err))
		markup = ""
	}

	// Each page counts once: render_error, fallback (empty markup) or rendered.
	switch {
	case err != nil:
		page.Fallback = true
		markup = p.site.FallbackHTML
		p.recorder.IncPageResult(metrics.PageRenderError)
	case strings.TrimSpace(markup) == "":
		page.Fallback = true
		markup = p.site.FallbackHTML
		logger.Warn("Render returned no markup, using fallback")
		p.recorder.IncPageResult(metrics.PageFallback)
	default:
		p.recorder.IncPageResult(metrics.PageRendered)
	}

	doc, injection := Inject(template, markup, p.site.OutletMarker, p.site.MountID)
	page.Injection = injection
	if injection == InjectionNone {
		logger.Warn("No outlet marker or mount element in template, markup not injected",
			zap.String("marker", p.site.OutletMarker),
			zap.String("mount_id", p.site.MountID))
		p.recorder.IncRewriteMiss("outlet")
	}

	doc, page.Locale, page.Unmatched = p.rewriter.Rewrite(doc, route)
	for _, field := range page.Unmatched {
		logger.Warn("Template has no tag to rewrite", zap.String("field", field))
		p.recorder.IncRewriteMiss(field)
	}

	path, err := WritePage(p.site.OutDir, route, doc)
	if err != nil {
		return page, err
	}
	page.Path = path

	logger.Info("Generated", zap.String("path", path), zap.String("locale", page.Locale))
	return page, nil
}

func (p *Pipeline) render(ctx context.Context, route string) (markup string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("renderer panicked: %v", r)
		}
	}()

	markup, err = p.renderer.Render(ctx, route)
	return markup, errors.WithStack(err)
}
