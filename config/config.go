package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bassamadnan/billsync/receipt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Ledger backends.
const (
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"
)

// ErrMissing is wrapped by Validate for every absent required value.
var ErrMissing = errors.New("missing required configuration")

// Config is built once at startup and passed to each component.
type Config struct {
	SheetID    string `yaml:"sheet_id"`
	GmailQuery string `yaml:"gmail_query"`
	SheetRange string `yaml:"sheet_range"`

	MaxResults int64  `yaml:"max_results"`
	ItemName   string `yaml:"item_name"`

	Backend    string `yaml:"backend"`
	LedgerFile string `yaml:"ledger_file"`

	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// Default returns a Config with every optional value set.
func Default() *Config {
	return &Config{
		MaxResults:      5,
		ItemName:        receipt.DefaultItemName,
		Backend:         BackendSheets,
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
	}
}

// Load reads the YAML file at path (a missing file is fine), then .env, then
// the environment. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.SheetID, "SHEET_ID")
	setString(&c.GmailQuery, "GMAIL_QUERY")
	setString(&c.SheetRange, "SHEET_RANGE")
	setString(&c.ItemName, "ITEM_NAME")
	setString(&c.Backend, "LEDGER_BACKEND")
	setString(&c.LedgerFile, "LEDGER_FILE")
	setString(&c.CredentialsFile, "GOOGLE_CREDENTIALS")
	setString(&c.TokenFile, "GMAIL_TOKEN")
	if v := strings.TrimSpace(os.Getenv("GMAIL_MAX_RESULTS")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GMAIL_MAX_RESULTS: %w", err)
		}
		c.MaxResults = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	var missing []string
	switch c.Backend {
	case BackendSheets:
		if c.SheetID == "" {
			missing = append(missing, "SHEET_ID")
		}
	case BackendXLSX:
		if c.LedgerFile == "" {
			missing = append(missing, "LEDGER_FILE")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Backend)
	}
	if c.GmailQuery == "" {
		missing = append(missing, "GMAIL_QUERY")
	}
	if c.SheetRange == "" {
		missing = append(missing, "SHEET_RANGE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max results must not be negative, got %d", c.MaxResults)
	}
	return nil
}
