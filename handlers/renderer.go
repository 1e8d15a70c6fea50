package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/ZacxDev/agency-prerender/config"
	"github.com/pkg/errors"
)

// Renderer renders routes by serving them through the page router in memory.
type Renderer struct {
	router *Router
}

func NewRenderer(site *config.SiteManifest) (*Renderer, error) {
	router, err := SetupRouter(site)
	if err != nil {
		return nil, err
	}
	return &Renderer{router: router}, nil
}

func (r *Renderer) Render(ctx context.Context, route string) (string, error) {
	req := httptest.NewRequest(http.MethodGet, route, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	r.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", errors.Errorf("rendering %s: status %d: %s", route, rec.Code, strings.TrimSpace(rec.Body.String()))
	}
	return rec.Body.String(), nil
}
