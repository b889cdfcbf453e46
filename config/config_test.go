package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bassamadnan/billsync/receipt"
)

var envKeys = []string{
	"SHEET_ID", "GMAIL_QUERY", "SHEET_RANGE", "ITEM_NAME", "LEDGER_BACKEND",
	"LEDGER_FILE", "GOOGLE_CREDENTIALS", "GMAIL_TOKEN", "GMAIL_MAX_RESULTS",
}

// clearEnv runs the test from an empty directory so no .env is picked up.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxResults != 5 || cfg.ItemName != receipt.DefaultItemName || cfg.Backend != BackendSheets {
		t.Errorf("defaults: got %+v", cfg)
	}
	err = cfg.Validate()
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("validate: got %v, want ErrMissing", err)
	}
	for _, name := range []string{"SHEET_ID", "GMAIL_QUERY", "SHEET_RANGE"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should name %s", err, name)
		}
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "billsync.yaml")
	yml := `sheet_id: from-file
gmail_query: "from:billing@example.com"
sheet_range: "Bills!A:D"
max_results: 20
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEET_ID", "from-env")
	t.Setenv("GMAIL_MAX_RESULTS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SheetID != "from-env" {
		t.Errorf("sheet id: got %q, want env override", cfg.SheetID)
	}
	if cfg.GmailQuery != "from:billing@example.com" || cfg.SheetRange != "Bills!A:D" {
		t.Errorf("file values: got %+v", cfg)
	}
	if cfg.MaxResults != 7 {
		t.Errorf("max results: got %d, want 7", cfg.MaxResults)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	env := "SHEET_ID=dot\nGMAIL_QUERY=label:bills\nSHEET_RANGE=A:D\n"
	if err := os.WriteFile(".env", []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set.
	for _, k := range []string{"SHEET_ID", "GMAIL_QUERY", "SHEET_RANGE"} {
		os.Unsetenv(k)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SheetID != "dot" || cfg.GmailQuery != "label:bills" || cfg.SheetRange != "A:D" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GMAIL_MAX_RESULTS", "lots")
	if _, err := Load(""); err == nil {
		t.Error("expected an error for a non-numeric max results")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("sheet_id: [unterminated"), 0644)
	t.Setenv("GMAIL_MAX_RESULTS", "")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestValidate_XLSX(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendXLSX
	cfg.GmailQuery = "q"
	cfg.SheetRange = "A:D"
	if err := cfg.Validate(); !errors.Is(err, ErrMissing) || !strings.Contains(err.Error(), "LEDGER_FILE") {
		t.Errorf("got %v, want missing LEDGER_FILE", err)
	}
	cfg.LedgerFile = "ledger.xlsx"
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}

	cfg.Backend = "csv"
	if err := cfg.Validate(); err == nil || errors.Is(err, ErrMissing) {
		t.Errorf("unknown backend: got %v", err)
	}
}
