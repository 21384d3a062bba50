package melcloudhome

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeviceNotFound is returned when a write names an empty or unknown
// device category, or a lookup helper is asked to treat a missing device
// as an error.
var ErrDeviceNotFound = errors.New("melcloudhome: device not found")

// ErrNotAuthenticated is returned when device state is queried before any
// profile has ever been fetched. This indicates programmer misuse rather
// than an absent device.
var ErrNotAuthenticated = errors.New("melcloudhome: not logged in")

// APIError is any non-2xx response from the MELCloud Home API, or a
// transport-level failure. Status is zero when the request never produced
// an HTTP response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("melcloudhome api error: %s", strings.TrimSpace(e.Message))
	}
	return fmt.Sprintf("melcloudhome api error %d: %s", e.Status, strings.TrimSpace(e.Message))
}

// SessionExpired reports whether the error is the vendor's session-expiry
// signal. Only a 401 qualifies; 403, 404 and 5xx never trigger re-auth.
func (e *APIError) SessionExpired() bool {
	return e.Status == 401
}

// LoginError is a failure of the browser-driven authentication flow.
// Phase names the furthest point the flow reached and URL, when set, is the
// address the browser ended up on instead of the dashboard.
type LoginError struct {
	Phase  LoginPhase
	URL    string
	Reason string
	Err    error
}

func (e *LoginError) Error() string {
	msg := fmt.Sprintf("melcloudhome login failed during %s: %s", e.Phase, e.Reason)
	if e.URL != "" {
		msg += fmt.Sprintf(" (reached %s)", e.URL)
	}
	return msg
}

func (e *LoginError) Unwrap() error { return e.Err }
