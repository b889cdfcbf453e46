package ledger

import (
	"sort"
	"time"

	"github.com/bassamadnan/billsync/receipt"
)

// SortRows orders data rows ascending by the date column. Dates that do not
// parse as receipt.DateLayout sort after those that do, by their text. The
// sort is stable.
func SortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return dateLess(cell(rows[i], DateColumn), cell(rows[j], DateColumn))
	})
}

// Sorted reports whether data rows are ascending by date.
func Sorted(rows [][]string) bool {
	return sort.SliceIsSorted(rows, func(i, j int) bool {
		return dateLess(cell(rows[i], DateColumn), cell(rows[j], DateColumn))
	})
}

func dateLess(a, b string) bool {
	ta, errA := time.Parse(receipt.DateLayout, a)
	tb, errB := time.Parse(receipt.DateLayout, b)
	switch {
	case errA == nil && errB == nil:
		return ta.Before(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
