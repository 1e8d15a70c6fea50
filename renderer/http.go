// Package renderer holds render functions that live outside this process: a
// server-side render endpoint and a headless browser.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTP asks a server-side render endpoint for a route's markup.
type HTTP struct {
	endpoint string
	client   *http.Client
}

// NewHTTP targets endpoint. When socket is set every request is dialed over
// that unix socket instead of the network.
func NewHTTP(endpoint, socket string, timeout time.Duration) *HTTP {
	client := &http.Client{Timeout: timeout}
	if socket != "" {
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
	}
	return &HTTP{endpoint: endpoint, client: client}
}

type renderRequest struct {
	URL string `json:"url"`
}

type renderResponse struct {
	HTML  string `json:"html"`
	Error *struct {
		Message string `json:"message"`
		Stack   string `json:"stack"`
	} `json:"error"`
}

func (h *HTTP) Render(ctx context.Context, route string) (string, error) {
	body, err := json.Marshal(renderRequest{URL: route})
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building render request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "render request for %s", route)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Errorf("render %s: status %d: %s", route, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var result renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrapf(err, "decoding render response for %s", route)
	}

	if result.Error != nil {
		if result.Error.Stack != "" {
			return "", errors.Errorf("render %s: %s\n%s", route, result.Error.Message, result.Error.Stack)
		}
		return "", errors.Errorf("render %s: %s", route, result.Error.Message)
	}

	return result.HTML, nil
}
