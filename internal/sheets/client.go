// Package sheets appends ticket rows to Google Sheets. When no credentials
// are configured the client runs disabled: intake still confirms tickets,
// it just skips the write. Absence of persistence is not an error.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client implements domain.RowAppender against the Sheets API.
type Client struct {
	svc    *sheetsapi.Service
	logger *slog.Logger
}

// New builds a client from a service-account credentials file. An empty path
// yields a disabled client and no error.
func New(ctx context.Context, credentialsPath string, logger *slog.Logger) (*Client, error) {
	if credentialsPath == "" {
		logger.Warn("sheets credentials not configured, spreadsheet writes disabled")
		return &Client{logger: logger}, nil
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	logger.Info("sheets client ready")
	return &Client{svc: svc, logger: logger}, nil
}

// Enabled reports whether the integration is configured.
func (c *Client) Enabled() bool { return c.svc != nil }

// Append writes one row of ordered string cells to the given tab. No retry:
// a failure surfaces once to the caller, and the user resubmits manually.
func (c *Client) Append(ctx context.Context, sheetID, sheetName string, row []string) error {
	if !c.Enabled() {
		c.logger.Warn("sheets disabled, skipping append")
		return nil
	}
	if sheetID == "" {
		return fmt.Errorf("sheets append: no sheet id configured")
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{cells}}

	_, err := c.svc.Spreadsheets.Values.
		Append(sheetID, fmt.Sprintf("%s!A:Z", sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}

	c.logger.Info("row appended", "sheet", sheetName)
	return nil
}

// TestConnection fetches the spreadsheet title, verifying credentials and
// access. Used by the doctor command.
func (c *Client) TestConnection(ctx context.Context, sheetID string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("sheets integration is disabled")
	}
	resp, err := c.svc.Spreadsheets.Get(sheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets get: %w", err)
	}
	title := ""
	if resp.Properties != nil {
		title = resp.Properties.Title
	}
	return title, nil
}
