package renderer

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
)

const innerHTMLScript = `(selector) => {
	const el = document.querySelector(selector);
	return el ? el.innerHTML : "";
}`

// Browser renders the client-side app in headless Chromium and returns the
// mount element's markup once the page has loaded.
type Browser struct {
	browser  *rod.Browser
	baseURL  string
	selector string
	timeout  time.Duration
}

// NewBrowser connects to controlURL, launching a headless Chromium when it is
// empty.
func NewBrowser(ctx context.Context, baseURL, controlURL, selector string, timeout time.Duration) (*Browser, error) {
	if controlURL == "" {
		url, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, errors.Wrap(err, "launching headless chromium")
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, errors.Wrap(err, "connecting to chromium")
	}

	return &Browser{
		browser:  browser,
		baseURL:  baseURL,
		selector: selector,
		timeout:  timeout,
	}, nil
}

func (b *Browser) Render(ctx context.Context, route string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: b.baseURL + route})
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", route)
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		return "", errors.Wrapf(err, "loading %s", route)
	}
	if _, err := page.Element(b.selector); err != nil {
		return "", errors.Wrapf(err, "waiting for %s on %s", b.selector, route)
	}

	res, err := page.Evaluate(&rod.EvalOptions{
		JS:      innerHTMLScript,
		JSArgs:  []interface{}{b.selector},
		ByValue: true,
	})
	if err != nil {
		return "", errors.Wrapf(err, "reading %s on %s", b.selector, route)
	}
	return res.Value.Str(), nil
}

func (b *Browser) Close() error {
	return errors.WithStack(b.browser.Close())
}
