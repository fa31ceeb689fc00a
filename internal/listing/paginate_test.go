package listing

import (
	"fmt"
	"testing"

	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

func makeRows(n int) []entity.DisplayRow {
	rows := make([]entity.DisplayRow, n)
	for i := range rows {
		rows[i].RecordID = fmt.Sprintf("%05d", i+1)
	}
	return rows
}

func TestNormalizePerPage(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{50, 50}, {100, 100}, {150, 150}, {200, 200},
		{0, 100}, {-1, 100}, {75, 100}, {1000, 100},
	}
	for _, tt := range tests {
		if got := NormalizePerPage(tt.in); got != tt.want {
			t.Errorf("NormalizePerPage(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		rows, perPage, want int
	}{
		{0, 100, 0},
		{1, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
		{250, 100, 3},
		{250, 50, 5},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.rows, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.rows, tt.perPage, got, tt.want)
		}
	}
}

func TestPaginateSlices(t *testing.T) {
	rows := makeRows(250)

	p := Paginate(rows, 1, 100)
	if len(p.Rows) != 100 || p.Rows[0].RecordID != "00001" {
		t.Fatalf("page 1: got %d rows starting %s", len(p.Rows), p.Rows[0].RecordID)
	}
	if p.TotalRows != 250 || p.TotalPages != 3 {
		t.Fatalf("page 1 totals: %d rows, %d pages", p.TotalRows, p.TotalPages)
	}

	p = Paginate(rows, 3, 100)
	if len(p.Rows) != 50 || p.Rows[0].RecordID != "00201" {
		t.Fatalf("last page: got %d rows starting %s", len(p.Rows), p.Rows[0].RecordID)
	}
}

func TestPaginateClampsPage(t *testing.T) {
	rows := makeRows(10)
	p := Paginate(rows, 0, 50)
	if p.Number != 1 || len(p.Rows) != 10 {
		t.Fatalf("page 0 should clamp to 1, got page %d with %d rows", p.Number, len(p.Rows))
	}
	p = Paginate(rows, 99, 50)
	if len(p.Rows) != 0 {
		t.Fatalf("past-the-end page should be empty, got %d rows", len(p.Rows))
	}
}

func TestPagerNavigation(t *testing.T) {
	pg := NewPager()
	if pg.Page() != 1 || pg.PerPage() != 100 {
		t.Fatalf("fresh pager: page %d perPage %d", pg.Page(), pg.PerPage())
	}

	pg.Prev() // no-op at page 1
	if pg.Page() != 1 {
		t.Fatalf("Prev at page 1 moved to %d", pg.Page())
	}

	pg.Next(250)
	pg.Next(250)
	if pg.Page() != 3 {
		t.Fatalf("expected page 3, got %d", pg.Page())
	}
	pg.Next(250) // no-op at last page
	if pg.Page() != 3 {
		t.Fatalf("Next at last page moved to %d", pg.Page())
	}
}

func TestPagerSetPerPageKeepsPage(t *testing.T) {
	pg := NewPager()
	pg.Next(500)
	pg.Next(500)
	if pg.Page() != 3 {
		t.Fatalf("setup: expected page 3, got %d", pg.Page())
	}
	pg.SetPerPage(50)
	if pg.Page() != 3 {
		t.Fatalf("per-page change must keep the current page, got %d", pg.Page())
	}
	if pg.PerPage() != 50 {
		t.Fatalf("expected perPage 50, got %d", pg.PerPage())
	}
}
