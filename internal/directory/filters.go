// Package directory turns directory query parameters into a bounded,
// counted, deterministic query over approved member profiles.
package directory

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// PageSize is fixed for every listing.
const PageSize = 24

// maxPage bounds the offset arithmetic. Pages past the last one are still
// served as empty results.
const maxPage = 1_000_000

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Filters is the canonical, validated form of the directory parameters.
// Zero values mean "not filtered".
type Filters struct {
	Q          string
	Degree     string
	Branch     string
	Company    string
	Location   string
	Year       int
	Employment string
	Interest   string
	Page       int
}

// ParseFilters reads the query string. Legacy names are folded here and
// nowhere else: department becomes branch, city becomes location.
// Malformed values are dropped rather than rejected.
func ParseFilters(v url.Values) Filters {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }

	f := Filters{
		Q:          get("q"),
		Degree:     get("degree"),
		Branch:     get("branch"),
		Company:    get("company"),
		Location:   get("location"),
		Employment: get("employment"),
		Interest:   get("interest"),
		Page:       1,
	}
	if f.Branch == "" {
		f.Branch = get("department")
	}
	if f.Location == "" {
		f.Location = get("city")
	}

	if y := get("year"); yearPattern.MatchString(y) {
		f.Year, _ = strconv.Atoi(y)
	}

	if p, err := strconv.Atoi(get("page")); err == nil && p > 1 {
		f.Page = min(p, maxPage)
	}

	return f
}

// Active reports whether any filter other than the page is set.
func (f Filters) Active() bool {
	f.Page = 0
	return f != Filters{}
}

// Values encodes the filters under their canonical names, omitting empty
// ones and the page.
func (f Filters) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", f.Q)
	set("degree", f.Degree)
	set("branch", f.Branch)
	set("company", f.Company)
	set("location", f.Location)
	if f.Year > 0 {
		v.Set("year", strconv.Itoa(f.Year))
	}
	set("employment", f.Employment)
	set("interest", f.Interest)
	return v
}

// Offset is the number of rows before the first row of page.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// TotalPages is ceil(total / PageSize), never less than 1.
func TotalPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}
