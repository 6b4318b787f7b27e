package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"compass/internal/adapters/rowstore"
)

// Default Google API endpoints. Overridable for tests.
const (
	DefaultSheetsBase = "https://sheets.googleapis.com/v4/spreadsheets"
	DefaultDriveBase  = "https://www.googleapis.com/drive/v3/files"
)

// TokenProvider supplies a valid bearer token for each request. Token
// acquisition and refresh live behind it; its failures are propagated
// unchanged.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context) (string, error)
}

// Client is a thin JSON client for the Sheets and Drive value APIs.
type Client struct {
	HTTP       *http.Client
	Tokens     TokenProvider
	SheetsBase string
	DriveBase  string
}

// NewClient creates a client with default endpoints and a 30s timeout.
func NewClient(tokens TokenProvider) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		Tokens:     tokens,
		SheetsBase: DefaultSheetsBase,
		DriveBase:  DefaultDriveBase,
	}
}

// call performs one authenticated JSON round-trip. A non-2xx response
// surfaces as a *rowstore.StoreError carrying the status and body.
// PRE: url is absolute; body and out may be nil
// POST: On success out (if non-nil) holds the decoded response
func (c *Client) call(ctx context.Context, op, method, url string, body, out any) error {
	token, err := c.Tokens.GetValidAccessToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &rowstore.StoreError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &rowstore.StoreError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return &rowstore.StoreError{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &rowstore.StoreError{Op: op, Status: res.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return &rowstore.StoreError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
