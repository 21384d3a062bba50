package melcloudhome

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// LoginPhase is where the browser login flow currently is. A LoginError
// names the phase the flow died in.
type LoginPhase string

const (
	PhaseIdle       LoginPhase = "idle"
	PhaseNavigating LoginPhase = "navigating"
	PhaseFormFilled LoginPhase = "form-filled"
	PhaseSubmitted  LoginPhase = "submitted"
	PhaseConfirmed  LoginPhase = "confirmed"
	PhaseFailed     LoginPhase = "failed"
)

// authenticator drives the vendor's Cognito form through a Browser and
// installs the resulting cookies into the transport. It keeps the last-used
// credentials in memory so an expired session can be re-established without
// caller involvement. Credentials are never persisted.
type authenticator struct {
	browser   Browser
	transport *transport
	loginURL  string
	timeout   time.Duration

	mu       sync.Mutex
	email    string
	password string
	phase    LoginPhase
}

func newAuthenticator(browser Browser, transport *transport, loginURL string, timeout time.Duration) *authenticator {
	return &authenticator{
		browser:   browser,
		transport: transport,
		loginURL:  loginURL,
		timeout:   timeout,
		phase:     PhaseIdle,
	}
}

// login runs the full browser flow. Credentials are stored before the
// browser launches, so canRetry holds even when this attempt fails.
func (a *authenticator) login(ctx context.Context, email, password string) error {
	a.mu.Lock()
	a.email = email
	a.password = password
	a.mu.Unlock()

	err := a.browserLogin(ctx, email, password)
	if err != nil {
		a.setPhase(PhaseFailed)
		return err
	}
	a.setPhase(PhaseConfirmed)
	return nil
}

// canRetry reports whether a prior login call stored credentials.
func (a *authenticator) canRetry() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email != "" && a.password != ""
}

// retry re-runs login with the stored credentials.
func (a *authenticator) retry(ctx context.Context) error {
	a.mu.Lock()
	email, password := a.email, a.password
	a.mu.Unlock()
	if email == "" || password == "" {
		return &LoginError{Phase: PhaseIdle, Reason: "cannot re-login, credentials not stored"}
	}
	return a.login(ctx, email, password)
}

func (a *authenticator) browserLogin(ctx context.Context, email, password string) error {
	a.setPhase(PhaseNavigating)
	session, err := a.browser.NewSession(ctx)
	if err != nil {
		return &LoginError{Phase: PhaseNavigating, Reason: "launch browser", Err: err}
	}
	defer session.Close()

	if err := session.Navigate(ctx, a.loginURL); err != nil {
		return &LoginError{Phase: PhaseNavigating, Reason: "open login page", Err: err}
	}
	if err := session.WaitVisible(ctx, selectorUsername); err != nil {
		return &LoginError{Phase: PhaseNavigating, Reason: "login form never appeared", Err: err}
	}

	if err := session.Fill(ctx, selectorUsername, email); err != nil {
		return &LoginError{Phase: PhaseNavigating, Reason: "fill username", Err: err}
	}
	if err := session.Fill(ctx, selectorPassword, password); err != nil {
		return &LoginError{Phase: PhaseNavigating, Reason: "fill password", Err: err}
	}
	a.setPhase(PhaseFormFilled)

	if err := session.Click(ctx, selectorSubmit); err != nil {
		return &LoginError{Phase: PhaseFormFilled, Reason: "submit login form", Err: err}
	}
	a.setPhase(PhaseSubmitted)

	// The dashboard is a Blazor app that can finish loading on the same
	// page, so the wait may time out while the URL is already right. Only
	// the URL decides success.
	waitCtx, cancel := context.WithTimeout(ctx, a.timeout)
	current, waitErr := session.WaitURLContains(waitCtx, dashboardFragment)
	cancel()
	if !strings.Contains(current, dashboardFragment) {
		return &LoginError{
			Phase:  PhaseSubmitted,
			URL:    current,
			Reason: "did not redirect to dashboard",
			Err:    waitErr,
		}
	}

	cookies, err := session.Cookies(ctx)
	if err != nil {
		return &LoginError{Phase: PhaseSubmitted, Reason: "read session cookies", Err: err}
	}
	a.installCookies(cookies)
	return nil
}

// installCookies transfers browser cookies into the transport jar, scoped to
// each cookie's reported domain. Cookies missing a name or value are
// skipped, not an error.
func (a *authenticator) installCookies(cookies []BrowserCookie) {
	for _, cookie := range cookies {
		if cookie.Name == "" || cookie.Value == "" {
			continue
		}
		domain := strings.TrimPrefix(cookie.Domain, ".")
		if domain == "" {
			continue
		}
		u := &url.URL{Scheme: "https", Host: domain}
		a.transport.setCookies(u, []*http.Cookie{{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   "/",
		}})
	}
}

func (a *authenticator) setPhase(phase LoginPhase) {
	a.mu.Lock()
	a.phase = phase
	a.mu.Unlock()
}

func (a *authenticator) currentPhase() LoginPhase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}
