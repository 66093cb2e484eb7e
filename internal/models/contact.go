package models

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	countryCodePattern = regexp.MustCompile(`^\+\d{1,3}$`)
	localPhonePattern  = regexp.MustCompile(`^\d{6,14}$`)
	e164Pattern        = regexp.MustCompile(`^\+\d{7,15}$`)
	nonDigits          = regexp.MustCompile(`\D`)
)

// IsLocalPhone reports whether s is a bare local number (digits only).
func IsLocalPhone(s string) bool {
	return localPhonePattern.MatchString(s)
}

// IsE164 reports whether s is a full E.164 number.
func IsE164(s string) bool {
	return e164Pattern.MatchString(s)
}

// AssembleE164 joins a calling code and a local number. Separators in the
// local part are dropped. ok is false when the result is not valid E.164.
func AssembleE164(countryCode, local string) (string, bool) {
	cc := strings.TrimSpace(countryCode)
	if !countryCodePattern.MatchString(cc) {
		return "", false
	}
	digits := nonDigits.ReplaceAllString(local, "")
	if !IsLocalPhone(digits) {
		return "", false
	}
	full := cc + digits
	if !IsE164(full) {
		return "", false
	}
	return full, true
}

// SplitE164 breaks a stored number into the longest known calling code and
// the remaining local digits. Unknown prefixes fall back to DefaultCountryCode.
func SplitE164(e164 string) (countryCode, local string) {
	s := strings.TrimSpace(e164)
	if s == "" {
		return DefaultCountryCode, ""
	}
	if !strings.HasPrefix(s, "+") {
		return DefaultCountryCode, nonDigits.ReplaceAllString(s, "")
	}
	for _, code := range countryCodesByLength {
		if strings.HasPrefix(s, code) {
			return code, s[len(code):]
		}
	}
	return DefaultCountryCode, nonDigits.ReplaceAllString(s, "")
}

// NormalizeLinkedIn turns a vanity name or profile URL into a canonical
// https URL. Query and fragment are stripped from linkedin.com URLs. Empty
// input yields "".
func NormalizeLinkedIn(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}

	lower := strings.ToLower(v)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		switch {
		case strings.HasPrefix(lower, "linkedin.com/") || strings.HasPrefix(lower, "www.linkedin.com/"):
			v = "https://" + v
		case strings.HasPrefix(lower, "in/"):
			v = "https://www.linkedin.com/" + v
		default:
			v = "https://www.linkedin.com/in/" + strings.TrimPrefix(v, "/")
		}
	}

	u, err := url.Parse(v)
	if err != nil {
		return v
	}
	host := strings.ToLower(u.Hostname())
	if host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com") {
		u.RawQuery = ""
		u.Fragment = ""
		u.Scheme = "https"
	}
	return u.String()
}
