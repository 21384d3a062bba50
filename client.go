// Package melcloudhome is a client for the MELCloud Home cloud service that
// controls Mitsubishi Electric air-to-air and air-to-water heat pumps.
//
// The vendor's login is a Cognito form inside a Blazor application and only
// works with JavaScript, so authentication runs through a headless browser
// and hands the resulting session cookies to a plain HTTP client. The device
// topology is cached with a freshness window and an expired session is
// re-established transparently, once, before the failed call is retried.
package melcloudhome

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client talks to the MELCloud Home API as one authenticated user. A Client
// owns exactly one session: its cookie jar and profile cache are not shared
// with other instances.
type Client struct {
	transport *transport
	auth      *authenticator
	cache     *profileCache
	cacheTTL  time.Duration

	fetchGroup singleflight.Group
}

type clientOptions struct {
	baseURL      string
	loginURL     string
	userAgent    string
	httpClient   *http.Client
	browser      Browser
	chromiumPath string
	cacheTTL     time.Duration
	loginTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithLoginURL overrides the browser login URL.
func WithLoginURL(loginURL string) ClientOption {
	return func(o *clientOptions) { o.loginURL = loginURL }
}

// WithHTTPClient supplies the HTTP client used for API calls. A cookie jar
// is attached if the client has none.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithBrowser substitutes the browser-automation backend.
func WithBrowser(browser Browser) ClientOption {
	return func(o *clientOptions) { o.browser = browser }
}

// WithChromiumPath points the default chromedp backend at a system Chromium
// binary. Needed on ARM boards where no bundled Chrome exists.
func WithChromiumPath(path string) ClientOption {
	return func(o *clientOptions) { o.chromiumPath = path }
}

// WithCacheTTL overrides the profile snapshot freshness window
// (default 5 minutes).
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(o *clientOptions) { o.cacheTTL = ttl }
}

// WithLoginTimeout overrides how long the login flow waits for the dashboard
// redirect (default 30 seconds).
func WithLoginTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) { o.loginTimeout = timeout }
}

// WithUserAgent overrides the user agent used by both the browser and the
// API transport.
func WithUserAgent(userAgent string) ClientOption {
	return func(o *clientOptions) { o.userAgent = userAgent }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	options := clientOptions{
		baseURL:      defaultBaseURL,
		loginURL:     defaultLoginURL,
		userAgent:    defaultUserAgent,
		cacheTTL:     defaultCacheTTL,
		loginTimeout: defaultLoginTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	headers := defaultHeaders()
	headers["user-agent"] = options.userAgent
	tr, err := newTransport(options.baseURL, options.httpClient, headers)
	if err != nil {
		return nil, err
	}

	browser := options.browser
	if browser == nil {
		browser = &ChromeBrowser{ExecPath: options.chromiumPath, UserAgent: options.userAgent}
	}

	return &Client{
		transport: tr,
		auth:      newAuthenticator(browser, tr, options.loginURL, options.loginTimeout),
		cache:     newProfileCache(),
		cacheTTL:  options.cacheTTL,
	}, nil
}

// Login authenticates with the stored-nowhere credentials and primes the
// profile cache with a fresh context fetch.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if err := c.auth.login(ctx, email, password); err != nil {
		return err
	}
	profile, err := c.fetchContext(ctx)
	if err != nil {
		return err
	}
	c.cache.set(profile)
	return nil
}

// ListDevices returns every unit across all buildings, tagged with its
// category (air-to-air before air-to-water within each building).
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	profile, err := c.ensureFreshProfile(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractDevices(profile), nil
}

// Buildings returns the buildings of the cached (or freshly fetched) profile.
func (c *Client) Buildings(ctx context.Context) ([]Building, error) {
	profile, err := c.ensureFreshProfile(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Building(nil), profile.Buildings...), nil
}

// GetDeviceState reads the live state endpoint for one device and returns
// the vendor's flat name→value document.
func (c *Client) GetDeviceState(ctx context.Context, deviceID string) (map[string]any, error) {
	if _, err := c.ensureFreshProfile(ctx); err != nil {
		return nil, err
	}

	raw, err := c.requestWithRetry(ctx, http.MethodGet, "device/"+deviceID+"/state", nil)
	if err != nil {
		return nil, err
	}
	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decode device state: %v", err)}
	}
	return state, nil
}

// SetDeviceState issues a state change for one device. The category must
// come from a prior ListDevices or FindDevice; an empty category fails with
// ErrDeviceNotFound before any HTTP call is made. The vendor's
// acknowledgment body is returned unchanged.
func (c *Client) SetDeviceState(ctx context.Context, deviceID string, category DeviceCategory, state map[string]any) (json.RawMessage, error) {
	return c.write(ctx, deviceID, category, state)
}

// CachedProfile returns the stored snapshot without any freshness check.
// It may be stale or nil; callers that want freshness go through
// ListDevices or Buildings instead.
func (c *Client) CachedProfile() *UserProfile {
	return c.cache.get()
}

// Close releases idle transport connections. Browser sessions are already
// torn down at the end of each login attempt.
func (c *Client) Close() error {
	c.transport.httpClient.CloseIdleConnections()
	return nil
}
