package tui

import (
	"fmt"
	"strings"

	"github.com/bassamadnan/billsync/receipt"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	colDate    = 11
	colTotal   = 12
	minSubject = 10
)

type reviewState int

const (
	stateReviewing reviewState = iota
	stateCommitting
	stateDone
)

// Model is the review screen shown before records are written to the
// ledger. Accepting runs the commit; cancelling leaves the ledger alone.
type Model struct {
	records []receipt.Record
	skipped int
	commit  CommitFunc

	selectedIdx     int
	viewportTopLine int
	width, height   int

	state     reviewState
	Confirmed bool
	Committed bool
	Err       error
}

func NewModel(records []receipt.Record, skipped int, commit CommitFunc) Model {
	return Model{records: records, skipped: skipped, commit: commit}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSelectedVisible()

	case committedMsg:
		m.Committed = true
		m.state = stateDone
		return m, tea.Quit

	case ErrorMsg:
		m.Err = msg.Err
		m.state = stateDone
		return m, tea.Quit

	case tea.KeyMsg:
		if m.state != stateReviewing {
			// Writes are not interruptible once started.
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc", "n":
			m.state = stateDone
			return m, tea.Quit
		case "y", "enter":
			m.Confirmed = true
			if m.commit == nil {
				m.state = stateDone
				return m, tea.Quit
			}
			m.state = stateCommitting
			return m, commitCmd(m.commit)
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.ensureSelectedVisible()
			}
		case "down", "j":
			if m.selectedIdx < len(m.records)-1 {
				m.selectedIdx++
				m.ensureSelectedVisible()
			}
		case "home", "g":
			m.selectedIdx = 0
			m.ensureSelectedVisible()
		case "end", "G":
			if len(m.records) > 0 {
				m.selectedIdx = len(m.records) - 1
				m.ensureSelectedVisible()
			}
		}
	}
	return m, nil
}

func (m Model) visibleRows() int {
	// title, column header, status bar
	h := m.height - 3
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) ensureSelectedVisible() {
	if len(m.records) == 0 {
		m.viewportTopLine = 0
		return
	}
	fit := m.visibleRows()
	if m.selectedIdx < m.viewportTopLine {
		m.viewportTopLine = m.selectedIdx
	} else if m.selectedIdx >= m.viewportTopLine+fit {
		m.viewportTopLine = m.selectedIdx - fit + 1
	}
	if m.viewportTopLine < 0 {
		m.viewportTopLine = 0
	}
}

func (m Model) View() string {
	if m.state == stateDone {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	subjectWidth := width - colDate - colTotal - 6
	if subjectWidth < minSubject {
		subjectWidth = minSubject
	}

	title := TitleStyle.Render(fmt.Sprintf("Review %d records", len(m.records)))
	head := ColumnHeadStyle.Render(formatCells("date", "total", "subject", subjectWidth))

	var lines []string
	end := m.viewportTopLine + m.visibleRows()
	if end > len(m.records) {
		end = len(m.records)
	}
	for i := m.viewportTopLine; i < end; i++ {
		lines = append(lines, m.renderRecord(i, subjectWidth))
	}
	if len(m.records) == 0 {
		lines = append(lines, AbsentStyle.Render("No records to write."))
	}

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		head,
		strings.Join(lines, "\n"),
		m.statusBar(width),
	))
}

func (m Model) statusBar(width int) string {
	if m.state == stateCommitting {
		return StatusBarSuccessStyle.Width(width).Render(truncate("Writing to ledger...", width))
	}
	status := fmt.Sprintf("%d records | %d skipped | [y/Enter]:Write [q/Esc]:Cancel [↑↓/jk]:Nav", len(m.records), m.skipped)
	return StatusBarNormalStyle.Width(width).Render(truncate(status, width))
}

func (m Model) renderRecord(i, subjectWidth int) string {
	rec := m.records[i]
	total, ok := rec.Total.Get()
	if !ok {
		total = "(none)"
	}
	line := formatCells(rec.Date, total, rec.Subject, subjectWidth)
	switch {
	case i == m.selectedIdx:
		return SelectedRowStyle.Render(line)
	case !ok:
		return AbsentStyle.Render(line)
	default:
		return NormalRowStyle.Render(line)
	}
}

func formatCells(date, total, subject string, subjectWidth int) string {
	return fmt.Sprintf("%-*s  %-*s  %s",
		colDate, truncate(date, colDate),
		colTotal, truncate(total, colTotal),
		truncate(subject, subjectWidth))
}

// Review runs the review screen. It reports whether the user accepted and
// whether the commit went through; a failed commit is returned as the error.
func Review(records []receipt.Record, skipped int, commit CommitFunc, opts ...tea.ProgramOption) (confirmed bool, err error) {
	final, err := tea.NewProgram(NewModel(records, skipped, commit), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("review screen: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Confirmed, m.Err
}
