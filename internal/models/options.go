package models

import (
	"slices"
	"sort"
	"time"
)

// Option sets shared by onboarding validation and the directory filters.
// Stored as text; the exact strings matter.

var Degrees = []string{
	"B.Tech",
	"M.Tech",
	"MBA",
	"PhD",
	"Other",
}

var Branches = []string{
	"Biotechnology",
	"Civil Engineering",
	"Chemical Engineering",
	"Computer Science & Engineering",
	"Chemistry",
	"Electronics & Communication Engineering",
	"Electrical Engineering",
	"Earth & Environmental Studies",
	"Humanities & Social Sciences",
	"Mathematics",
	"Mechanical Engineering",
	"Metallurgical & Materials Engineering",
	"Management Studies",
	"Physics",
}

var EmploymentTypes = []string{
	"Student",
	"Employed",
	"Self-Employed",
	"Unemployed",
	"Other",
}

// Interests must match the CHECK constraint on profiles.interests.
var Interests = []string{
	"Networking, Business & Services",
	"Mentorship & Guidance",
	"Jobs & Internships",
	"Exclusive Member Benefits",
	"Community Activities",
	"Nostalgia & Updates",
}

const MaxInterests = 6

const MinGraduationYear = 1965

// MaxGraduationYear allows students a few years ahead of graduation.
func MaxGraduationYear(now time.Time) int {
	return now.UTC().Year() + 5
}

type CountryCode struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

var CountryCodes = []CountryCode{
	{"India", "+91"},
	{"USA / Canada", "+1"},
	{"United Kingdom", "+44"},
	{"Australia", "+61"},
	{"Singapore", "+65"},
	{"United Arab Emirates", "+971"},
	{"Qatar", "+974"},
	{"Saudi Arabia", "+966"},
	{"Bahrain", "+973"},
	{"Oman", "+968"},
	{"Kuwait", "+965"},
	{"Germany", "+49"},
	{"France", "+33"},
	{"Spain", "+34"},
	{"Italy", "+39"},
	{"Netherlands", "+31"},
	{"Switzerland", "+41"},
	{"Sweden", "+46"},
	{"Norway", "+47"},
	{"Denmark", "+45"},
	{"Finland", "+358"},
	{"Ireland", "+353"},
	{"Portugal", "+351"},
	{"Greece", "+30"},
	{"Poland", "+48"},
	{"Czechia", "+420"},
	{"Hungary", "+36"},
	{"Romania", "+40"},
	{"Turkey", "+90"},
	{"Ukraine", "+380"},
	{"Russia", "+7"},
	{"Japan", "+81"},
	{"South Korea", "+82"},
	{"China", "+86"},
	{"Hong Kong", "+852"},
	{"Macau", "+853"},
	{"Taiwan", "+886"},
	{"Malaysia", "+60"},
	{"Indonesia", "+62"},
	{"Philippines", "+63"},
	{"Thailand", "+66"},
	{"Vietnam", "+84"},
	{"Bangladesh", "+880"},
	{"Pakistan", "+92"},
	{"Sri Lanka", "+94"},
	{"Nepal", "+977"},
	{"New Zealand", "+64"},
	{"Mexico", "+52"},
	{"Brazil", "+55"},
	{"Argentina", "+54"},
	{"Chile", "+56"},
	{"Colombia", "+57"},
	{"Venezuela", "+58"},
	{"Egypt", "+20"},
	{"South Africa", "+27"},
	{"Morocco", "+212"},
	{"Tunisia", "+216"},
	{"Nigeria", "+234"},
}

// DefaultCountryCode is used when a stored number cannot be split.
const DefaultCountryCode = "+91"

// countryCodesByLength is CountryCodes ordered longest code first so prefix
// matching prefers +971 over +9 style collisions.
var countryCodesByLength = func() []string {
	codes := make([]string, 0, len(CountryCodes))
	for _, c := range CountryCodes {
		codes = append(codes, c.Code)
	}
	sort.SliceStable(codes, func(i, j int) bool { return len(codes[i]) > len(codes[j]) })
	return codes
}()

// IsInterest reports whether s is one of the enumerated interests.
func IsInterest(s string) bool {
	return slices.Contains(Interests, s)
}
