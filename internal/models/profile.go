package models

import (
	"fmt"
	"time"
)

// Moderation is the tri-state review status of a profile.
type Moderation string

const (
	ModerationPending  Moderation = "pending"
	ModerationApproved Moderation = "approved"
	ModerationRejected Moderation = "rejected"
)

// ParseModeration accepts the stored value or an admin decision verb
// ("approve", "reject").
func ParseModeration(s string) (Moderation, error) {
	switch s {
	case "pending":
		return ModerationPending, nil
	case "approved", "approve":
		return ModerationApproved, nil
	case "rejected", "reject":
		return ModerationRejected, nil
	case "":
		// rows created before moderation existed
		return ModerationPending, nil
	}
	return "", fmt.Errorf("%w: unknown moderation state %q", ErrBadRequest, s)
}

// Profile is the canonical member row. Nullable text columns are pointers.
type Profile struct {
	ID        string
	Email     string
	FullName  *string
	AvatarURL *string

	Degree         *string
	Branch         *string
	GraduationYear *int

	EmploymentType *string
	Company        *string
	Designation    *string

	PhoneE164 *string
	City      *string
	Country   *string

	LinkedIn  *string
	Interests []string
	IsPublic  bool

	Onboarded       bool
	Moderation      Moderation
	ModeratedAt     *time.Time
	ModeratedBy     *string
	AcceptedTerms   bool
	AcceptedPrivacy bool

	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActiveAt *time.Time
}

// IsApproved reports whether an admin has approved the profile.
func (p *Profile) IsApproved() bool {
	return p.Moderation == ModerationApproved
}

// ProfileFlags are the two facts the access policy needs about a caller.
type ProfileFlags struct {
	Onboarded bool
	Approved  bool
}

// OnboardingUpdate carries every owner-editable field. Saving it always marks
// the profile onboarded and records consent; it never touches moderation.
type OnboardingUpdate struct {
	FullName       string
	Email          string
	AvatarURL      *string
	PhoneE164      string
	City           *string
	Country        *string
	GraduationYear int
	Degree         string
	Branch         string
	EmploymentType string
	Company        *string
	Designation    *string
	LinkedIn       *string
	Interests      []string
	IsPublic       bool
}

// DirectoryEntry is the public-safe projection returned by the directory.
// Phone and email are deliberately absent.
type DirectoryEntry struct {
	ID             string   `json:"id"`
	FullName       *string  `json:"full_name"`
	AvatarURL      *string  `json:"avatar_url"`
	Degree         *string  `json:"degree"`
	Branch         *string  `json:"branch"`
	GraduationYear *int     `json:"graduation_year"`
	EmploymentType *string  `json:"employment_type"`
	Company        *string  `json:"company"`
	Designation    *string  `json:"designation"`
	City           *string  `json:"city"`
	Country        *string  `json:"country"`
	LinkedIn       *string  `json:"linkedin"`
	Interests      []string `json:"interests"`
}

// DirectoryPage is one window of directory results.
type DirectoryPage struct {
	Items      []*DirectoryEntry `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
}
