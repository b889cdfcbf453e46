package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type memStore struct {
	rows     [][]string
	appends  int
	sorts    int
	failRead error
	failSort error
}

func (m *memStore) Rows(context.Context) ([][]string, error) {
	if m.failRead != nil {
		return nil, m.failRead
	}
	out := make([][]string, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memStore) Append(_ context.Context, rows [][]string) error {
	m.appends++
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memStore) SortByDate(context.Context) error {
	m.sorts++
	if m.failSort != nil {
		return m.failSort
	}
	SortRows(m.rows[HeaderRows:])
	return nil
}

var header = []string{"item", "date", "total", "subject"}

func TestSync_AppendsOnlyNewRows(t *testing.T) {
	store := &memStore{rows: [][]string{
		header,
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A"},
	}}
	candidates := [][]string{
		{"enercare", "02 Jan 2025", "$60.00", "Receipt B"},
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A"},
	}

	res, err := Sync(context.Background(), store, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Appended) != 1 || res.Appended[0][1] != "02 Jan 2025" {
		t.Fatalf("appended: got %v, want the 02 Jan 2025 row", res.Appended)
	}
	if res.Duplicates != 1 || res.Existing != 1 {
		t.Errorf("counts: got duplicates=%d existing=%d, want 1 and 1", res.Duplicates, res.Existing)
	}
	if store.sorts != 1 {
		t.Errorf("sorts: got %d, want 1", store.sorts)
	}
	want := [][]string{
		header,
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A"},
		{"enercare", "02 Jan 2025", "$60.00", "Receipt B"},
	}
	if !reflect.DeepEqual(store.rows, want) {
		t.Errorf("ledger: got %v, want %v", store.rows, want)
	}
}

func TestSync_SortsAfterOutOfOrderAppend(t *testing.T) {
	store := &memStore{rows: [][]string{
		header,
		{"enercare", "15 Feb 2025", "$1", "b"},
	}}
	_, err := Sync(context.Background(), store, [][]string{
		{"enercare", "03 Jan 2025", "$2", "a"},
		{"enercare", "09 Dec 2024", "$3", "c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(store.rows[0], header) {
		t.Errorf("header moved: got %v", store.rows[0])
	}
	if !Sorted(store.rows[HeaderRows:]) {
		t.Errorf("data rows not sorted: %v", store.rows[HeaderRows:])
	}
	if got := store.rows[1][1]; got != "09 Dec 2024" {
		t.Errorf("first row: got %q, want %q", got, "09 Dec 2024")
	}
}

func TestSync_Idempotent(t *testing.T) {
	store := &memStore{rows: [][]string{header}}
	candidates := [][]string{
		{"enercare", "02 Jan 2025", "$60.00", "Receipt B"},
		{"enercare", "01 Jan 2025", "", "Receipt A"},
	}
	if _, err := Sync(context.Background(), store, candidates); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	res, err := Sync(context.Background(), store, candidates)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !res.NoOp() {
		t.Errorf("second sync appended %v", res.Appended)
	}
	if store.appends != 1 || store.sorts != 1 {
		t.Errorf("writes: got appends=%d sorts=%d, want 1 and 1", store.appends, store.sorts)
	}
}

func TestSync_NoOpDoesNotWrite(t *testing.T) {
	store := &memStore{rows: [][]string{header}}
	res, err := Sync(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NoOp() || store.appends != 0 || store.sorts != 0 {
		t.Errorf("expected no writes, got appends=%d sorts=%d", store.appends, store.sorts)
	}
}

func TestSync_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Sync(context.Background(), &memStore{failRead: boom}, [][]string{{"a"}})
	if !errors.Is(err, boom) {
		t.Errorf("read failure: got %v, want %v", err, boom)
	}

	store := &memStore{rows: [][]string{header}, failSort: boom}
	_, err = Sync(context.Background(), store, [][]string{{"enercare", "01 Jan 2025", "$1", "x"}})
	if !errors.Is(err, boom) {
		t.Errorf("sort failure: got %v, want %v", err, boom)
	}
}

func TestDiff(t *testing.T) {
	existing := [][]string{
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A"},
	}
	candidates := [][]string{
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A"},
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A "},
		{"enercare", "01 Jan 2025", "$50.00"},
		{"enercare", "03 Jan 2025", "$5.00", "Receipt C"},
		{"enercare", "03 Jan 2025", "$5.00", "Receipt C"},
	}
	want := [][]string{
		{"enercare", "01 Jan 2025", "$50.00", "Receipt A "},
		{"enercare", "01 Jan 2025", "$50.00"},
		{"enercare", "03 Jan 2025", "$5.00", "Receipt C"},
	}
	if got := Diff(existing, candidates); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortRows(t *testing.T) {
	rows := [][]string{
		{"x", "not a date", "", "1"},
		{"x", "21 Mar 2025", "", "2"},
		{"x", "02 Jan 2025", "", "3"},
		{"x", "21 Mar 2025", "", "4"},
	}
	SortRows(rows)
	var order []string
	for _, r := range rows {
		order = append(order, r[3])
	}
	if want := []string{"3", "2", "4", "1"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestTabTitle(t *testing.T) {
	tests := map[string]string{
		"Sheet1!A1:D":    "Sheet1",
		"'My Bills'!A:D": "My Bills",
		"'Bob''s'!A:D":   "Bob's",
		"A1:D":           "",
		"Bills":          "",
	}
	for rng, want := range tests {
		if got := TabTitle(rng); got != want {
			t.Errorf("%q: got %q, want %q", rng, got, want)
		}
	}
}
