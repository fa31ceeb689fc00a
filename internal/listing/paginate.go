package listing

import (
	"slices"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// Page is one visible slice of the final sorted row list.
type Page struct {
	Rows       []entity.DisplayRow `json:"rows"`
	Number     int                 `json:"page"`
	PerPage    int                 `json:"perPage"`
	TotalRows  int                 `json:"totalRows"`
	TotalPages int                 `json:"totalPages"`
}

// NormalizePerPage coerces the per-page value to one of the allowed sizes.
func NormalizePerPage(n int) int {
	if slices.Contains(constants.PageSizes, n) {
		return n
	}
	return constants.DefaultPageSize
}

// TotalPages returns ceil(totalRows / perPage).
func TotalPages(totalRows, perPage int) int {
	if perPage <= 0 {
		perPage = constants.DefaultPageSize
	}
	return (totalRows + perPage - 1) / perPage
}

// Paginate slices rows for a 1-based page number. A page before 1 is treated
// as page 1; a page past the end yields an empty slice (navigation past the
// boundaries is a no-op for callers that track the page themselves, see
// Pager). Note that a per-page change deliberately does not reset the page.
func Paginate(rows []entity.DisplayRow, page, perPage int) Page {
	perPage = NormalizePerPage(perPage)
	if page < 1 {
		page = 1
	}
	total := len(rows)
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Rows:       rows[start:end],
		Number:     page,
		PerPage:    perPage,
		TotalRows:  total,
		TotalPages: TotalPages(total, perPage),
	}
}

// Pager tracks the current page the way the record table does: Next and Prev
// are no-ops at the boundaries, and changing the page size keeps the current
// page number as-is.
type Pager struct {
	page    int
	perPage int
}

func NewPager() *Pager {
	return &Pager{page: 1, perPage: constants.DefaultPageSize}
}

func (p *Pager) Page() int    { return p.page }
func (p *Pager) PerPage() int { return p.perPage }

func (p *Pager) SetPerPage(n int) { p.perPage = NormalizePerPage(n) }

func (p *Pager) Next(totalRows int) {
	if p.page < TotalPages(totalRows, p.perPage) {
		p.page++
	}
}

func (p *Pager) Prev() {
	if p.page > 1 {
		p.page--
	}
}

func (p *Pager) Slice(rows []entity.DisplayRow) Page {
	return Paginate(rows, p.page, p.perPage)
}
