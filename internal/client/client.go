// Package client is a typed HTTP client for the item API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/barang/internal/model"
)

// APIError is a non-2xx response from the item API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("item api: %d: %s", e.StatusCode, e.Message)
}

// Client calls the item API at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type itemResponse struct {
	Message string      `json:"message"`
	Data    *model.Item `json:"data"`
}

// List returns every item.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the item with the given ID.
func (c *Client) Get(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create creates an item and returns it with its assigned ID.
func (c *Client) Create(ctx context.Context, item model.Item) (*model.Item, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodPost, "/items", item, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Update replaces every field of the item with the given ID.
func (c *Client) Update(ctx context.Context, id int64, item model.Item) (*model.Item, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodPut, itemPath(id), item, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Delete removes the item with the given ID and returns the API's
// confirmation text.
func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	var text string
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, &text); err != nil {
		return "", err
	}
	return text, nil
}

func itemPath(id int64) string {
	return "/items/" + strconv.FormatInt(id, 10)
}

// do sends a request and decodes the response into out. A *string out
// receives the raw body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if text, ok := out.(*string); ok {
		*text = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage extracts the message of an error body, falling back to the
// raw body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		return strings.TrimSpace(string(data))
	}
	if body.Error != "" {
		return body.Message + ": " + body.Error
	}
	return body.Message
}
