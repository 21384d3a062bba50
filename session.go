package melcloudhome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ensureFreshProfile makes sure a valid cached snapshot exists, fetching the
// user context when the cache is missing, stale or invalidated. Concurrent
// callers share a single in-flight fetch; nobody issues a duplicate context
// request (or a duplicate re-login) while one is outstanding.
func (c *Client) ensureFreshProfile(ctx context.Context) (*UserProfile, error) {
	if c.cache.isValid(c.cacheTTL) {
		return c.cache.get(), nil
	}

	result, err, _ := c.fetchGroup.Do(endpointUserContext, func() (any, error) {
		// A waiter that queued behind a finished fetch sees a fresh cache.
		if c.cache.isValid(c.cacheTTL) {
			return c.cache.get(), nil
		}
		profile, err := c.fetchContext(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.set(profile)
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*UserProfile), nil
}

func (c *Client) fetchContext(ctx context.Context) (*UserProfile, error) {
	raw, err := c.requestWithRetry(ctx, http.MethodGet, endpointUserContext, nil)
	if err != nil {
		return nil, err
	}
	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decode user context: %v", err)}
	}
	return &profile, nil
}

// requestWithRetry is the one-shot recovery path: a 401 with stored
// credentials triggers exactly one re-login and one repeat of the request.
// Any second failure propagates untouched, and without stored credentials
// the original error propagates immediately.
func (c *Client) requestWithRetry(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	raw, err := c.transport.request(ctx, method, path, nil, body)
	if err == nil {
		return raw, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !c.transport.isSessionExpired(apiErr.Status) || !c.auth.canRetry() {
		return nil, err
	}

	if loginErr := c.auth.retry(ctx); loginErr != nil {
		return nil, loginErr
	}
	return c.transport.request(ctx, method, path, nil, body)
}

// write issues a state change. The category must have been resolved by the
// caller from a prior list or lookup; it is never inferred here. On success
// the cache is invalidated so the next read re-fetches; on failure the cache
// is left untouched.
func (c *Client) write(ctx context.Context, deviceID string, category DeviceCategory, payload any) (json.RawMessage, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: device category not set for %q", ErrDeviceNotFound, deviceID)
	}

	raw, err := c.requestWithRetry(ctx, http.MethodPut, string(category)+"/"+deviceID, payload)
	if err != nil {
		return nil, err
	}
	c.cache.invalidate()
	return raw, nil
}
