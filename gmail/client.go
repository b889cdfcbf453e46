package gmail

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/bassamadnan/billsync/receipt"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// Client reads receipt messages from a Gmail mailbox.
type Client struct {
	srv *gmail.Service
}

// NewClient builds a Gmail client on an authenticated HTTP client. Extra
// options are passed through to the service.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// ListMessageIDs returns the ids of up to max messages matching query, newest
// first as Gmail orders them.
func (c *Client) ListMessageIDs(ctx context.Context, query string, max int64) ([]string, error) {
	call := c.srv.Users.Messages.List(user).Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages for %q: %w", query, err)
	}
	ids := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		ids = append(ids, m.Id)
	}
	log.Printf("Gmail: %d messages match %q", len(ids), query)
	return ids, nil
}

// GetMessage fetches one message in full format.
func (c *Client) GetMessage(ctx context.Context, id string) (receipt.Message, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return receipt.Message{}, fmt.Errorf("unable to retrieve message %s: %w", id, err)
	}
	return toMessage(msg), nil
}
