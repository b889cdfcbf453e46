// Package cmd holds the billsync command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	logFile string
)

// logCloser is set when logs go to a file and is closed on exit.
var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "billsync",
	Short: "Copy bill receipts from Gmail into a spreadsheet ledger",
	Long: `billsync reads receipt emails matching a Gmail search, pulls the order
total out of each one and appends the new ones to a ledger sheet, which is
then kept sorted by date.

Example Usage:
  billsync auth                  # Authorize Gmail and Sheets access
  billsync sync                  # Append new receipts to the ledger
  billsync sync --dry-run        # Show what would be appended
  billsync sync --review         # Confirm the records before writing`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command until it finishes or a shutdown signal
// arrives. It is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cancelling context...")
		cancel()
	}()

	if err := execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the command tree and closes the log file on every path,
// including failed commands, which skip cobra's post-run hooks.
func execute(ctx context.Context) error {
	defer closeLog()
	return rootCmd.ExecuteContext(ctx)
}

func closeLog() {
	if logCloser == nil {
		return
	}
	log.SetOutput(os.Stderr)
	logCloser.Close()
	logCloser = nil
}

func setupLogging() error {
	flags := log.LstdFlags
	if verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	log.SetFlags(flags)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0660)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	logCloser = f
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "billsync.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Add timestamps and source lines to log output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
}
