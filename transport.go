package melcloudhome

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// transport issues API requests against the vendor with the session cookies
// the authenticator installed. It owns the cookie jar: the jar is the only
// representation of the session.
type transport struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	jar        http.CookieJar
}

func newTransport(baseURL string, httpClient *http.Client, headers map[string]string) (*transport, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	jar := httpClient.Jar
	if jar == nil {
		var err error
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &transport{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		headers:    headers,
		httpClient: httpClient,
		jar:        jar,
	}, nil
}

// request issues the call with default headers merged under caller headers
// (caller values win). A 2xx response returns the raw body; anything else
// becomes an APIError with the status and the message from the error body.
// Failures before a response arrives yield an APIError with status zero.
func (t *transport) request(ctx context.Context, method, path string, headers map[string]string, body any) (json.RawMessage, error) {
	endpoint, err := url.JoinPath(t.baseURL, path)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("build url %s: %v", path, err)}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encode request body: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("build request: %v", err)}
	}
	for name, value := range t.headers {
		req.Header.Set(name, value)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(payload)}
	}

	return payload, nil
}

// isSessionExpired is the sole trigger for the re-authentication path.
func (t *transport) isSessionExpired(status int) bool {
	return status == http.StatusUnauthorized
}

func (t *transport) setCookies(u *url.URL, cookies []*http.Cookie) {
	t.jar.SetCookies(u, cookies)
}

// errorMessage pulls a human-readable message out of an error body: the
// JSON error or message field when present, the raw text otherwise.
func errorMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(payload))
}
