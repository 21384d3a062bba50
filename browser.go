package melcloudhome

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Browser launches automation sessions for the login flow. Each session is
// isolated and disposable: sessions are never reused across logins.
// Implementations other than the chromedp one can be substituted through
// WithBrowser, which is also how the tests run without a real browser.
type Browser interface {
	NewSession(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is a single headless page. Close must be safe to call on
// every exit path, including after a failed step.
type BrowserSession interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	// WaitURLContains blocks until the page URL contains fragment or the
	// context expires. It returns the URL the page ended on either way, so
	// the caller can distinguish "timed out but already on the dashboard"
	// from a genuine redirect failure.
	WaitURLContains(ctx context.Context, fragment string) (string, error)
	Cookies(ctx context.Context) ([]BrowserCookie, error)
	Close() error
}

// BrowserCookie is the subset of a browser cookie the session transfer needs.
type BrowserCookie struct {
	Name   string
	Value  string
	Domain string
}

// ChromeBrowser drives headless Chrome through chromedp.
type ChromeBrowser struct {
	// ExecPath points at a system Chromium binary. Leave empty to let
	// chromedp find one. Needed on ARM boards (Raspberry Pi) where the
	// default download does not exist:
	// Debian/Ubuntu /usr/bin/chromium-browser, Alpine /usr/bin/chromium.
	ExecPath  string
	UserAgent string
}

func (b *ChromeBrowser) NewSession(ctx context.Context) (BrowserSession, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.NoSandbox)
	if b.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.UserAgent))
	}
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)

	// Starting the browser up front keeps failures (missing binary, bad
	// exec path) out of the first Navigate call.
	if err := chromedp.Run(taskCtx); err != nil {
		cancelTask()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &chromeSession{
		ctx: taskCtx,
		cancel: func() {
			cancelTask()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions on the session's browser context, honouring the
// caller's deadline when one is set.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *chromeSession) WaitURLContains(ctx context.Context, fragment string) (string, error) {
	var onTarget bool
	expr := fmt.Sprintf("window.location.href.includes(%q)", fragment)
	err := s.run(ctx, chromedp.Poll(expr, &onTarget, chromedp.WithPollingInterval(500*time.Millisecond)))

	// Read the location on the undated session context: the wait context
	// may already be past its deadline.
	var current string
	if locErr := chromedp.Run(s.ctx, chromedp.Location(&current)); locErr != nil && err == nil {
		err = locErr
	}
	return current, err
}

func (s *chromeSession) Cookies(ctx context.Context) ([]BrowserCookie, error) {
	var out []BrowserCookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, BrowserCookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
