package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/bassamadnan/billsync/auth"
	"github.com/bassamadnan/billsync/billing"
	"github.com/bassamadnan/billsync/config"
	"github.com/bassamadnan/billsync/gmail"
	"github.com/bassamadnan/billsync/ledger"
	"github.com/bassamadnan/billsync/receipt"
	"github.com/bassamadnan/billsync/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	dryRun         bool
	review         bool
	syncMaxResults int64
)

// errCancelled is returned when the review screen is dismissed.
var errCancelled = errors.New("sync cancelled, ledger untouched")

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Append new receipts to the ledger",
	Long: `Lists the messages matching the configured Gmail query, extracts the
order total from each receipt and appends the records that are not yet in the
ledger. The ledger is sorted by date after every write.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-results") {
			cfg.MaxResults = syncMaxResults
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runSync(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func runSync(ctx context.Context, cfg *config.Config, out io.Writer) error {
	provider, err := auth.NewProvider(cfg.CredentialsFile, auth.FileTokenStore{Path: cfg.TokenFile})
	if err != nil {
		return err
	}
	httpClient, err := provider.Client(ctx)
	if err != nil {
		return err
	}
	source, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return err
	}
	log.Println("Gmail: client initialized.")

	runner := billing.NewRunner(source, billing.Options{
		Query:      cfg.GmailQuery,
		MaxResults: cfg.MaxResults,
		ItemName:   cfg.ItemName,
	})
	report, err := runner.Collect(ctx)
	if err != nil {
		fmt.Fprintln(out, tui.RenderError(err))
		return err
	}

	if !dryRun {
		store, err := openStore(ctx, cfg, httpClient)
		if err != nil {
			return err
		}
		if err := commit(ctx, runner, store, report); err != nil {
			fmt.Fprintln(out, tui.RenderError(err))
			return err
		}
	}

	fmt.Fprintln(out, tui.RenderSummary(report))
	return nil
}

func commit(ctx context.Context, runner *billing.Runner, store ledger.Store, report *billing.Report) error {
	if !review {
		return runner.Commit(ctx, store, report)
	}
	if logFile == "" {
		// The review screen owns the terminal.
		f, err := tea.LogToFile("billsync.log", "")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	}
	confirmed, err := tui.Review(report.Records, len(report.Skipped), func() error {
		return runner.Commit(ctx, store, report)
	})
	if err != nil {
		return err
	}
	if !confirmed {
		return errCancelled
	}
	return nil
}

// openStore builds the ledger named by the configured backend.
func openStore(ctx context.Context, cfg *config.Config, httpClient *http.Client) (ledger.Store, error) {
	switch cfg.Backend {
	case config.BackendXLSX:
		log.Printf("Ledger: using workbook %s", cfg.LedgerFile)
		return ledger.NewXLSXStore(cfg.LedgerFile, cfg.SheetRange, receipt.Header), nil
	case config.BackendSheets:
		srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create Sheets service: %w", err)
		}
		log.Printf("Ledger: using spreadsheet %s", cfg.SheetID)
		return ledger.NewSheetsStore(srv, cfg.SheetID, cfg.SheetRange), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract records without writing the ledger")
	syncCmd.Flags().BoolVar(&review, "review", false, "Review the records in a terminal screen before writing")
	syncCmd.Flags().Int64Var(&syncMaxResults, "max-results", 5, "Maximum number of messages to process (overrides GMAIL_MAX_RESULTS)")
	syncCmd.MarkFlagsMutuallyExclusive("dry-run", "review")
	rootCmd.AddCommand(syncCmd)
}
