package tui

import tea "github.com/charmbracelet/bubbletea"

// CommitFunc writes the reviewed records to the ledger.
type CommitFunc func() error

// commitCmd runs the ledger write off the update loop and reports back
// with committedMsg or ErrorMsg.
func commitCmd(commit CommitFunc) tea.Cmd {
	return func() tea.Msg {
		if err := commit(); err != nil {
			return ErrorMsg{Err: err}
		}
		return committedMsg{}
	}
}
