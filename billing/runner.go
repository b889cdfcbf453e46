// Package billing turns receipt emails into ledger rows, one message at a
// time.
package billing

import (
	"context"
	"fmt"
	"log"

	"github.com/bassamadnan/billsync/ledger"
	"github.com/bassamadnan/billsync/receipt"
	"github.com/google/uuid"
)

// MessageSource lists and fetches receipt emails.
type MessageSource interface {
	ListMessageIDs(ctx context.Context, query string, max int64) ([]string, error)
	GetMessage(ctx context.Context, id string) (receipt.Message, error)
}

// Options select which messages are processed and how records are named.
type Options struct {
	Query      string
	MaxResults int64
	ItemName   string
}

// Report describes one run.
type Report struct {
	RunID   string
	Listed  int
	Skipped []Skip
	Records []receipt.Record
	NoHTML  int
	NoTotal int
	Synced  bool
	Result  ledger.Result
}

// Skip is a message that produced no record.
type Skip struct {
	MessageID string
	Reason    string
}

// Candidates returns the records in wire form.
func (r *Report) Candidates() [][]string {
	rows := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec.Row()
	}
	return rows
}

// Runner processes messages sequentially. Remote failures abort the run.
type Runner struct {
	source MessageSource
	opts   Options
}

func NewRunner(source MessageSource, opts Options) *Runner {
	if opts.ItemName == "" {
		opts.ItemName = receipt.DefaultItemName
	}
	return &Runner{source: source, opts: opts}
}

// Collect lists matching messages and assembles one record per message.
func (r *Runner) Collect(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log.Printf("Sync %s: listing messages for %q (max %d)", report.RunID, r.opts.Query, r.opts.MaxResults)

	ids, err := r.source.ListMessageIDs(ctx, r.opts.Query, r.opts.MaxResults)
	if err != nil {
		return nil, err
	}
	report.Listed = len(ids)

	for _, id := range ids {
		msg, err := r.source.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		ex := receipt.Extract(msg)
		if !ex.HTMLFound {
			report.NoHTML++
			log.Printf("Sync %s: message %s has no HTML part", report.RunID, id)
		}
		if len(ex.Details) > 0 {
			log.Printf("Sync %s: message %s receipt details %v", report.RunID, id, ex.Details)
		}
		rec, err := receipt.Assemble(r.opts.ItemName, msg.Subject, msg.Date, ex.Total)
		if err != nil {
			log.Printf("Sync %s: skipping message %s: %v", report.RunID, id, err)
			report.Skipped = append(report.Skipped, Skip{MessageID: id, Reason: err.Error()})
			continue
		}
		if !rec.Total.Present() {
			report.NoTotal++
			log.Printf("Sync %s: message %s has no order total", report.RunID, id)
		}
		report.Records = append(report.Records, rec)
	}
	return report, nil
}

// Commit writes the collected records to the ledger.
func (r *Runner) Commit(ctx context.Context, store ledger.Store, report *Report) error {
	res, err := ledger.Sync(ctx, store, report.Candidates())
	if err != nil {
		return fmt.Errorf("sync %s: %w", report.RunID, err)
	}
	report.Synced = true
	report.Result = res
	return nil
}

// Run collects and commits in one go.
func (r *Runner) Run(ctx context.Context, store ledger.Store) (*Report, error) {
	report, err := r.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, store, report); err != nil {
		return report, err
	}
	return report, nil
}
