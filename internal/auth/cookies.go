package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
	CSRFCookieName    = "csrf_token"
)

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

func (c CookieConfig) build(name, value string, expires time.Time, httpOnly bool) *http.Cookie {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: parseSameSite(c.SameSite),
	}
}

// SessionCookies returns the cookies carrying a token pair plus the
// readable CSRF token bound to the same account.
func (c CookieConfig) SessionCookies(pair *TokenPair, csrfToken string) []*http.Cookie {
	return []*http.Cookie{
		c.build(AccessCookieName, pair.AccessToken, pair.AccessExpiry, true),
		c.build(RefreshCookieName, pair.RefreshToken, pair.RefreshExpiry, true),
		c.build(CSRFCookieName, csrfToken, pair.RefreshExpiry, false),
	}
}

// CSRFCookie carries a token for a caller that is not signed in yet.
func (c CookieConfig) CSRFCookie(token string, expires time.Time) *http.Cookie {
	return c.build(CSRFCookieName, token, expires, false)
}

// ClearedCookies expires every session cookie.
func (c CookieConfig) ClearedCookies() []*http.Cookie {
	past := time.Unix(0, 0)
	out := []*http.Cookie{
		c.build(AccessCookieName, "", past, true),
		c.build(RefreshCookieName, "", past, true),
		c.build(CSRFCookieName, "", past, false),
	}
	for _, ck := range out {
		ck.MaxAge = -1
	}
	return out
}

// WriteCookies sets each cookie on the response.
func WriteCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// GetCSRFTokenCookie retrieves the CSRF token from cookies
func GetCSRFTokenCookie(r *http.Request) string {
	return cookieValue(r, CSRFCookieName)
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch strings.ToLower(sameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
