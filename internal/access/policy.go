// Package access gates the member-only pages on three facts about the
// caller: signed in, onboarded, approved.
package access

import (
	"net/url"
	"strings"
)

// Family is a guarded path prefix.
type Family string

const (
	FamilyNone       Family = ""
	FamilyOnboarding Family = "onboarding"
	FamilyDashboard  Family = "dashboard"
	FamilyDirectory  Family = "directory"
)

// Outcome is what the gate does with a request.
type Outcome string

const (
	Allow              Outcome = "allow"
	RedirectLogin      Outcome = "redirect_login"
	RedirectOnboarding Outcome = "redirect_onboarding"
	RedirectDashboard  Outcome = "redirect_dashboard"
)

const (
	LoginPath      = "/auth/login"
	OnboardingPath = "/onboarding"
	DashboardPath  = "/dashboard"
	DirectoryPath  = "/directory"

	NoticeNotApproved = "not-approved"
)

// Facts are what the gate knows about the caller.
type Facts struct {
	Authenticated bool
	Onboarded     bool
	Approved      bool
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Family   Family
	Outcome  Outcome
	Location string // redirect target; empty when Outcome is Allow
}

// Classify maps a path to its guarded family. Matching is on segment
// boundaries: /dashboard and /dashboard/x are guarded, /dashboards is not.
func Classify(path string) Family {
	switch {
	case hasSegmentPrefix(path, OnboardingPath):
		return FamilyOnboarding
	case hasSegmentPrefix(path, DashboardPath):
		return FamilyDashboard
	case hasSegmentPrefix(path, DirectoryPath):
		return FamilyDirectory
	}
	return FamilyNone
}

func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}

// Decide applies the access table to path and facts. The first matching row
// wins.
func Decide(path string, facts Facts) Decision {
	family := Classify(path)
	d := Decision{Family: family, Outcome: Allow}

	if family == FamilyNone {
		return d
	}

	if !facts.Authenticated {
		return redirect(family, RedirectLogin, LoginURL(path))
	}

	switch family {
	case FamilyOnboarding:
		return d
	case FamilyDashboard:
		if !facts.Onboarded {
			return redirect(family, RedirectOnboarding, OnboardingPath)
		}
		return d
	case FamilyDirectory:
		if !facts.Onboarded {
			return redirect(family, RedirectOnboarding, OnboardingPath)
		}
		if !facts.Approved {
			return redirect(family, RedirectDashboard, DashboardPath+"?notice="+NoticeNotApproved)
		}
		return d
	}
	return d
}

func redirect(f Family, o Outcome, location string) Decision {
	return Decision{Family: f, Outcome: o, Location: location}
}

// LoginURL is the sign-in page with the original path attached so the
// caller returns there after authenticating.
func LoginURL(returnTo string) string {
	v := url.Values{}
	v.Set("redirect", returnTo)
	return LoginPath + "?" + v.Encode()
}
