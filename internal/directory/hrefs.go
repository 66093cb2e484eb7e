package directory

import "strconv"

const basePath = "/directory"

// PageHref links to page of the listing with the same filters applied.
func PageHref(f Filters, page int) string {
	v := f.Values()
	v.Set("page", strconv.Itoa(max(page, 1)))
	return basePath + "?" + v.Encode()
}

// ClearHref is the bare directory path: every filter removed.
func ClearHref() string {
	return basePath
}

// Pagination carries the links a listing page renders.
type Pagination struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PrevHref   string `json:"prev_href,omitempty"`
	NextHref   string `json:"next_href,omitempty"`
	ClearHref  string `json:"clear_href"`
}

// Paginate builds the links for the current page. Prev is omitted on the
// first page and next on the last; a page past the end links back to the
// last real page.
func Paginate(f Filters, totalPages int) Pagination {
	p := Pagination{
		Page:       f.Page,
		TotalPages: totalPages,
		ClearHref:  ClearHref(),
	}
	if f.Page > 1 {
		p.PrevHref = PageHref(f, min(f.Page-1, totalPages))
	}
	if f.Page < totalPages {
		p.NextHref = PageHref(f, f.Page+1)
	}
	return p
}
