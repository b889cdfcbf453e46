package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/sheets/v4"
)

const (
	valueInputUserEntered = "USER_ENTERED"
	sortAscending         = "ASCENDING"
)

// SheetsStore is a ledger kept in a Google Sheets range.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
	rng           string

	sheetID  int64
	resolved bool
}

// NewSheetsStore returns a store over the A1 range rng of a spreadsheet.
func NewSheetsStore(srv *sheets.Service, spreadsheetID, rng string) *SheetsStore {
	return &SheetsStore{srv: srv, spreadsheetID: spreadsheetID, rng: rng}
}

func (s *SheetsStore) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get %s: %w", s.rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, pad(row))
	}
	return rows, nil
}

func (s *SheetsStore) Append(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append %s: %w", s.rng, err)
	}
	return nil
}

// SortByDate sorts every row below the header across the ledger's columns.
func (s *SheetsStore) SortByDate(ctx context.Context) error {
	sheetID, err := s.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			SortRange: &sheets.SortRangeRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    HeaderRows,
					StartColumnIndex: 0,
					EndColumnIndex:   Columns,
					ForceSendFields:  []string{"SheetId", "StartColumnIndex"},
				},
				SortSpecs: []*sheets.SortSpec{{
					DimensionIndex: DateColumn,
					SortOrder:      sortAscending,
				}},
			},
		}},
	}
	if _, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets sort: %w", err)
	}
	return nil
}

// resolveSheetID maps the tab named in the range to its numeric id. A range
// without a tab refers to the first sheet, id 0.
func (s *SheetsStore) resolveSheetID(ctx context.Context) (int64, error) {
	if s.resolved {
		return s.sheetID, nil
	}
	title := TabTitle(s.rng)
	if title == "" {
		s.resolved = true
		return 0, nil
	}
	ss, err := s.srv.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets lookup %q: %w", title, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			s.sheetID, s.resolved = sh.Properties.SheetId, true
			log.Printf("Ledger: tab %q has sheet id %d", title, s.sheetID)
			return s.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheets: no tab named %q", title)
}

// TabTitle returns the sheet name of an A1 range such as 'My Bills'!A:D, or
// "" when the range names no sheet.
func TabTitle(rng string) string {
	i := strings.LastIndex(rng, "!")
	if i < 0 {
		return ""
	}
	title := rng[:i]
	if len(title) >= 2 && strings.HasPrefix(title, "'") && strings.HasSuffix(title, "'") {
		title = strings.ReplaceAll(title[1:len(title)-1], "''", "'")
	}
	return title
}
