package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	tab           string

	// header column positions, loaded on first use
	columns map[string]int
	width   int
}

// New builds a client for one tab of a spreadsheet using a service
// account JSON key file.
func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID, tab string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	return NewWithOptions(ctx, spreadsheetID, tab,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
}

func NewWithOptions(ctx context.Context, spreadsheetID, tab string, opts ...option.ClientOption) (*Client, error) {
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, tab: tab}, nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

func (c *Client) Tab() string { return c.tab }
