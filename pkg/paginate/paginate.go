// Package paginate computes navigation metadata for page-numbered listings.
// It never touches rows: callers fetch a page and a total count however they
// like and hand the count in.
package paginate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	labelPrevious = "Previous"
	labelNext     = "Next"
)

// Link is one navigable entry of a paged listing. URL is nil when the link
// cannot be followed (Previous on the first page, Next on the last one).
type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Meta is the navigation metadata of one page.
type Meta struct {
	CurrentPage int    `json:"current_page"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	PerPage     int    `json:"per_page"`
	LastPage    int    `json:"last_page"`
	Total       int    `json:"total"`
	Path        string `json:"path,omitempty"`
	Links       []Link `json:"links,omitempty"`
}

// Page is the listing envelope returned to presentation layers.
type Page[R any] struct {
	Data []R `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPage builds an envelope; a nil slice is replaced so it encodes as [].
func NewPage[R any](data []R, meta Meta) Page[R] {
	if data == nil {
		data = []R{}
	}
	return Page[R]{Data: data, Meta: meta}
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithMaxPerPage rejects requests asking for more than n rows per page. n <= 0 disables the cap.
func WithMaxPerPage(n int) Option {
	return func(p *Paginator) { p.maxPerPage = n }
}

// WithPrevNext toggles the Previous/Next controls around page links.
func WithPrevNext(enabled bool) Option {
	return func(p *Paginator) { p.prevNext = enabled }
}

// Paginator holds policy only; it is immutable after New and safe for concurrent use.
type Paginator struct {
	maxPerPage int
	prevNext   bool
}

// New returns a Paginator with Previous/Next links enabled and no per-page cap.
func New(opts ...Option) *Paginator {
	p := &Paginator{prevNext: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxPerPage returns the configured cap, 0 when unlimited.
func (pg *Paginator) MaxPerPage() int { return pg.maxPerPage }

var defaultPaginator = New()

// Paginate computes metadata with the default policy.
func Paginate(total int, p Params) (Meta, error) {
	return defaultPaginator.Paginate(total, p)
}

// Check validates p against the paginator policy without computing anything.
func (pg *Paginator) Check(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if pg.maxPerPage > 0 && p.PerPage > pg.maxPerPage {
		return &RangeError{Field: "per_page", Value: p.PerPage, Reason: fmt.Sprintf("must be <= %d", pg.maxPerPage)}
	}
	return nil
}

// Paginate computes the metadata for total rows split into pages of p.PerPage.
// The requested page is clamped to [1, LastPage]; links are generated only when p.Path is set.
func (pg *Paginator) Paginate(total int, p Params) (Meta, error) {
	if err := pg.Check(p); err != nil {
		return Meta{}, err
	}
	if total < 0 {
		return Meta{}, &RangeError{Field: "total", Value: total, Reason: "must be >= 0"}
	}

	last := total / p.PerPage
	if total%p.PerPage != 0 {
		last++
	}
	last = max(1, last)
	current := min(max(p.Page, 1), last)

	meta := Meta{
		CurrentPage: current,
		PerPage:     p.PerPage,
		LastPage:    last,
		Total:       total,
		Path:        p.Path,
	}
	if total > 0 {
		meta.From = (current-1)*p.PerPage + 1
		meta.To = min(current*p.PerPage, total)
	}
	if p.Path != "" {
		meta.Links = pg.links(p, current, last)
	}
	return meta, nil
}

// Offset is the row offset of the page Paginate would report for the same input.
func Offset(meta Meta) int {
	return (meta.CurrentPage - 1) * meta.PerPage
}

func (pg *Paginator) links(p Params, current, last int) []Link {
	size := last
	if pg.prevNext {
		size += 2
	}
	links := make([]Link, 0, size)

	if pg.prevNext {
		prev := Link{Label: labelPrevious}
		if current > 1 {
			prev.URL = ptr(pageURL(p, current-1))
		}
		links = append(links, prev)
	}
	for n := 1; n <= last; n++ {
		links = append(links, Link{
			URL:    ptr(pageURL(p, n)),
			Label:  strconv.Itoa(n),
			Active: n == current,
		})
	}
	if pg.prevNext {
		next := Link{Label: labelNext}
		if current < last {
			next.URL = ptr(pageURL(p, current+1))
		}
		links = append(links, next)
	}
	return links
}

// pageURL appends page, per_page, the search parameters and the select
// directives to the base path, so following a link keeps the projection.
func pageURL(p Params, n int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if len(p.SearchFields) > 0 {
		q.Set("search_fields", strings.Join(p.SearchFields, ","))
	}
	if sel := FormatSelect(p.SelectFields); sel != "" {
		q.Set("select", sel)
	}
	sep := "?"
	if strings.Contains(p.Path, "?") {
		sep = "&"
	}
	return p.Path + sep + q.Encode()
}

func ptr(s string) *string { return &s }
