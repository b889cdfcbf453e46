package tui

import (
	"fmt"
	"strings"

	"github.com/bassamadnan/billsync/billing"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// SumTotals adds up the total column of the given rows. Cells that do not
// read as an amount are counted in unparsed and left out of the sum.
func SumTotals(rows [][]string) (sum decimal.Decimal, unparsed int) {
	for _, row := range rows {
		if len(row) < 3 || strings.TrimSpace(row[2]) == "" {
			continue
		}
		d, err := decimal.NewFromString(amountText(row[2]))
		if err != nil {
			unparsed++
			continue
		}
		sum = sum.Add(d)
	}
	return sum, unparsed
}

// RenderSummary formats the outcome of a run for the terminal.
func RenderSummary(r *billing.Report) string {
	var b strings.Builder
	line := func(key, val string) {
		b.WriteString(HeaderKeyStyle.Render(fmt.Sprintf("%-10s", key)))
		b.WriteString(HeaderValStyle.Render(val))
		b.WriteString("\n")
	}

	line("Run:", r.RunID)
	line("Messages:", fmt.Sprintf("%d listed, %d skipped", r.Listed, len(r.Skipped)))
	line("Records:", fmt.Sprintf("%d (%d without HTML, %d without total)", len(r.Records), r.NoHTML, r.NoTotal))

	rows := r.Candidates()
	status := StatusBarNormalStyle.Render("Dry run, ledger untouched")
	if r.Synced {
		rows = r.Result.Appended
		line("Existing:", fmt.Sprintf("%d rows", r.Result.Existing))
		line("Appended:", fmt.Sprintf("%d rows, %d duplicates", len(r.Result.Appended), r.Result.Duplicates))
		if r.Result.NoOp() {
			status = StatusBarNormalStyle.Render("No new entries")
		} else {
			status = StatusBarSuccessStyle.Render("Ledger updated")
		}
	}

	sum, unparsed := SumTotals(rows)
	total := "$" + sum.StringFixed(2)
	if unparsed > 0 {
		total += fmt.Sprintf(" (%d unreadable)", unparsed)
	}
	line("Total:", total)

	if !r.Synced {
		for _, rec := range r.Records {
			b.WriteString(NormalRowStyle.Render(formatCells(rec.Date, rec.Total.Or("(none)"), rec.Subject, 40)))
			b.WriteString("\n")
		}
	}
	for _, s := range r.Skipped {
		b.WriteString(AbsentStyle.Render(fmt.Sprintf("skipped %s: %s", s.MessageID, s.Reason)))
		b.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("billsync"),
		ContentBoxStyle.Render(strings.TrimRight(b.String(), "\n")),
		status,
	)
}

// RenderError formats a failed run for the terminal.
func RenderError(err error) string {
	return StatusBarErrorStyle.Render("Error: " + err.Error())
}
