// Package ledger keeps the billing ledger deduplicated and ordered by date.
package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Layout of the ledger shared by every store.
const (
	HeaderRows = 1 // rows above the data
	Columns    = 4 // item, date, total, subject
	DateColumn = 1 // zero-based index of the date column
)

// Store is the persisted ledger. Rows returns every row including the
// header, each padded to Columns cells.
type Store interface {
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, rows [][]string) error
	SortByDate(ctx context.Context) error
}

// Result describes what a Sync did.
type Result struct {
	Existing   int
	Appended   [][]string
	Duplicates int
}

// NoOp reports whether nothing was written.
func (r Result) NoOp() bool { return len(r.Appended) == 0 }

// Sync appends the candidates that are not already in the ledger and then
// sorts all data rows by date. Nothing is written when every candidate is a
// duplicate.
func Sync(ctx context.Context, store Store, candidates [][]string) (Result, error) {
	rows, err := store.Rows(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read ledger: %w", err)
	}
	existing := dataRows(rows)

	fresh := Diff(existing, candidates)
	res := Result{
		Existing:   len(existing),
		Appended:   fresh,
		Duplicates: len(candidates) - len(fresh),
	}
	if res.NoOp() {
		log.Printf("Ledger: no new entries to append (%d candidates, %d existing rows)", len(candidates), len(existing))
		return res, nil
	}

	if err := store.Append(ctx, fresh); err != nil {
		return Result{}, fmt.Errorf("append %d rows: %w", len(fresh), err)
	}
	log.Printf("Ledger: appended %d new rows", len(fresh))

	if err := store.SortByDate(ctx); err != nil {
		return Result{}, fmt.Errorf("sort ledger: %w", err)
	}
	return res, nil
}

// Diff returns the candidates whose exact tuple appears neither in existing
// nor earlier in candidates, in candidate order.
func Diff(existing, candidates [][]string) [][]string {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for _, row := range existing {
		seen[rowKey(row)] = struct{}{}
	}
	fresh := make([][]string, 0, len(candidates))
	for _, row := range candidates {
		k := rowKey(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, row)
	}
	return fresh
}

func dataRows(rows [][]string) [][]string {
	if len(rows) <= HeaderRows {
		return nil
	}
	return rows[HeaderRows:]
}

func rowKey(row []string) string {
	return fmt.Sprintf("%d\x1f%s", len(row), strings.Join(row, "\x1f"))
}

// pad extends a row to Columns cells; stores drop trailing empty cells.
func pad(row []string) []string {
	if len(row) >= Columns {
		return row
	}
	out := make([]string, Columns)
	copy(out, row)
	return out
}
