package safety

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/conduitrun/conduit/internal/net/ssrf"
)

// ErrTooManyRedirects is returned when a fetch's redirect chain exceeds
// MaxRedirects.
var ErrTooManyRedirects = errors.New("safety: too many redirects")

// MaxRedirects bounds how many redirect hops ValidatedFetch will follow.
const MaxRedirects = 5

// ValidateURL enforces the scheme/host/port rules for outbound tool
// requests: scheme must be http(s); host must not be blocked/private/a
// cloud metadata host; port must not be an internal-service port.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("blocked: unsupported scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return nil, errors.New("blocked: missing host")
	}
	if port := u.Port(); port != "" && ssrf.IsBlockedPort(port) {
		return nil, fmt.Errorf("blocked: internal-service port %s", port)
	}
	if err := ssrf.ValidatePublicHostname(host); err != nil {
		return nil, err
	}
	return u, nil
}

// HTTPDoer is the subset of *http.Client used by ValidatedFetch, so callers
// can inject a fake in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ValidatedFetch performs an HTTP GET against rawURL, manually following
// redirects and re-validating each hop against ValidateURL, up to
// MaxRedirects. It never hands the redirect target to the HTTP client's own
// redirect machinery, so a blocked hop is never dialed.
func ValidatedFetch(ctx context.Context, client HTTPDoer, rawURL string) (*http.Response, error) {
	current := rawURL
	for hop := 0; ; hop++ {
		if hop > MaxRedirects {
			return nil, ErrTooManyRedirects
		}
		u, err := ValidateURL(current)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}
		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if loc == "" {
			return nil, errors.New("safety: redirect with no Location header")
		}
		next, err := u.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect location: %w", err)
		}
		current = next.String()
	}
}

func isRedirect(status int) bool {
	return status == http.StatusMovedPermanently ||
		status == http.StatusFound ||
		status == http.StatusSeeOther ||
		status == http.StatusTemporaryRedirect ||
		status == http.StatusPermanentRedirect
}
