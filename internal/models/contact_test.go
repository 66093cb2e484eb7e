package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleE164(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		local  string
		want   string
		wantOK bool
	}{
		{"india mobile", "+91", "9876543210", "+919876543210", true},
		{"separators dropped", "+1", "415-555 0100", "+14155550100", true},
		{"bad country code", "91", "9876543210", "", false},
		{"four digit code", "+9712", "501234567", "", false},
		{"empty local", "+44", "", "", false},
		{"too short", "+1", "123", "", false},
		{"too long", "+91", "1234567890123456", "", false},
		{"long code pushes past fifteen digits", "+971", "50123456789012", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AssembleE164(tt.code, tt.local)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitE164_LongestPrefixWins(t *testing.T) {
	code, local := SplitE164("+971501234567")
	assert.Equal(t, "+971", code)
	assert.Equal(t, "501234567", local)

	code, local = SplitE164("+919876543210")
	assert.Equal(t, "+91", code)
	assert.Equal(t, "9876543210", local)

	code, local = SplitE164("+14155550100")
	assert.Equal(t, "+1", code)
	assert.Equal(t, "4155550100", local)
}

func TestSplitE164_Fallbacks(t *testing.T) {
	code, local := SplitE164("")
	assert.Equal(t, DefaultCountryCode, code)
	assert.Empty(t, local)

	code, local = SplitE164("98765 43210")
	assert.Equal(t, DefaultCountryCode, code)
	assert.Equal(t, "9876543210", local)
}

func TestSplitE164_RoundTrip(t *testing.T) {
	for _, cc := range CountryCodes {
		full, ok := AssembleE164(cc.Code, "12345678")
		require.True(t, ok, cc.Code)
		code, local := SplitE164(full)
		assert.Equal(t, "12345678", local, cc.Code)
		assert.Equal(t, full, code+local)
	}
}

func TestNormalizeLinkedIn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"jane-doe", "https://www.linkedin.com/in/jane-doe"},
		{"in/jane-doe", "https://www.linkedin.com/in/jane-doe"},
		{"linkedin.com/in/jane", "https://linkedin.com/in/jane"},
		{"https://www.linkedin.com/in/jane?utm_source=x#top", "https://www.linkedin.com/in/jane"},
		{"http://in.linkedin.com/in/jane", "https://in.linkedin.com/in/jane"},
		{"https://example.com/jane?x=1", "https://example.com/jane?x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLinkedIn(tt.in))
		})
	}
}

func TestIsLocalPhone(t *testing.T) {
	assert.True(t, IsLocalPhone("987654"))
	assert.True(t, IsLocalPhone("98765432101234"))
	assert.False(t, IsLocalPhone("98765"))
	assert.False(t, IsLocalPhone("987-654-3210"))
}

func TestParseModeration(t *testing.T) {
	m, err := ParseModeration("approve")
	require.NoError(t, err)
	assert.Equal(t, ModerationApproved, m)

	m, err = ParseModeration("rejected")
	require.NoError(t, err)
	assert.Equal(t, ModerationRejected, m)

	m, err = ParseModeration("")
	require.NoError(t, err)
	assert.Equal(t, ModerationPending, m)

	_, err = ParseModeration("maybe")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestMaxGraduationYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2031, MaxGraduationYear(now))
}

func TestInterestsFitLimit(t *testing.T) {
	assert.LessOrEqual(t, len(Interests), MaxInterests)
	assert.True(t, IsInterest("Jobs & Internships"))
	assert.False(t, IsInterest("jobs & internships"))
}
