package melcloudhome

import "time"

const (
	defaultBaseURL = "https://www.melcloudhome.com/api/"

	// The login form is a Cognito page inside a Blazor app; it only works
	// with JavaScript, hence the browser flow.
	defaultLoginURL   = "https://www.melcloudhome.com/bff/login?returnUrl=/dashboard"
	dashboardFragment = "/dashboard"

	defaultLoginTimeout = 30 * time.Second
	defaultCacheTTL     = 5 * time.Minute
	requestTimeout      = 15 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/123.0.0.0 Safari/537.36"

	endpointUserContext = "user/context"
)

// Cognito login form selectors. The page renders two copies of the form
// (desktop and mobile); the visible one is the desktop variant.
const (
	selectorUsername = `form[name="cognitoSignInForm"] input[name="username"]`
	selectorPassword = `form[name="cognitoSignInForm"] input[name="password"]`
	selectorSubmit   = `form[name="cognitoSignInForm"] input[name="signInSubmitButton"]`
)

func defaultHeaders() map[string]string {
	return map[string]string{
		"x-csrf":     "1",
		"user-agent": defaultUserAgent,
	}
}
