// Package auth hands out authenticated HTTP clients for the Google APIs the
// sync talks to.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"
)

// Scopes needed to read receipts and maintain the ledger.
var Scopes = []string{gmail.GmailReadonlyScope, sheets.SpreadsheetsScope}

// Provider produces authenticated clients. How tokens are stored is up to
// its TokenStore.
type Provider struct {
	config *oauth2.Config
	store  TokenStore
	in     io.Reader
	out    io.Writer
}

// NewProvider reads an OAuth client secret file. The interactive consent
// flow prompts on stdout and reads the code from stdin.
func NewProvider(credentialsFile string, store TokenStore, scopes ...string) (*Provider, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	if len(scopes) == 0 {
		scopes = Scopes
	}
	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	return &Provider{config: config, store: store, in: os.Stdin, out: os.Stdout}, nil
}

// SetPrompt redirects the consent prompt and the code input.
func (p *Provider) SetPrompt(in io.Reader, out io.Writer) {
	p.in, p.out = in, out
}

// Client returns an HTTP client carrying the stored token, running the
// consent flow first when there is none. Refreshed tokens are saved back.
func (p *Provider) Client(ctx context.Context) (*http.Client, error) {
	tok, err := p.store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Auth: stored token unusable, re-authorizing: %v", err)
		}
		if tok, err = p.Authorize(ctx); err != nil {
			return nil, err
		}
	}
	src := &savingSource{base: p.config.TokenSource(ctx, tok), store: p.store, last: tok.AccessToken}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// Authorize runs the consent flow and stores the resulting token.
func (p *Provider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	authURL := p.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(p.out, "Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)
	var authCode string
	if _, err := fmt.Fscan(p.in, &authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := p.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	if err := p.store.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// savingSource persists every token that differs from the last one seen.
type savingSource struct {
	base  oauth2.TokenSource
	store TokenStore

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			log.Printf("Auth: unable to save refreshed token: %v", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}
