package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/google/uuid"
)

const (
	defaultTimeout             = 30 * time.Second
	defaultPageLimit           = 25
	errorBodyReadLimit   int64 = 1024
	successBodyReadLimit int64 = 1 << 20
)

var errBaseURLRequired = errors.New("cart service base URL is required")

// Client wraps the remote cart service's list/create/update/delete endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageLimit  int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout on the built-in client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithPageLimit overrides the page size used by List.
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// NewClient builds a cart service client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		pageLimit:  defaultPageLimit,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// List fetches the user's cart. Unrecognized payloads reduce to an empty
// collection rather than an error so callers always converge on a fetch.
func (c *Client) List(ctx context.Context, userID string, page int) ([]Entry, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart gateway not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("userId", userID)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.pageLimit))

	body, err := c.do(ctx, http.MethodGet, "/cart?"+query.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	entries, ok := decodeEntries(body)
	if !ok {
		return []Entry{}, nil
	}
	return entries, nil
}

// Create adds a product to the remote cart. The returned flag reports whether
// the response carried a usable post-mutation collection; when it is false
// the caller must resync. Each call carries a fresh idempotency key so a
// double-tapped add cannot produce duplicate cart lines on servers that
// honor the header.
func (c *Client) Create(ctx context.Context, input CreateInput) ([]Entry, bool, error) {
	if c == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeInternal, "cart gateway not configured")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal create payload")
	}

	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	body, err := c.do(ctx, http.MethodPost, "/cart", payload, headers)
	if err != nil {
		return nil, false, err
	}

	entries, ok := decodeEntries(body)
	return entries, ok, nil
}

// UpdateQuantity sets the quantity on one cart entry. A nil entry with a nil
// error means the server acknowledged the change without echoing the entry;
// callers must resync in that case.
func (c *Client) UpdateQuantity(ctx context.Context, entryID string, quantity int) (*Entry, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart gateway not configured")
	}
	if strings.TrimSpace(entryID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	payload, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal quantity payload")
	}

	body, err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(entryID), payload, nil)
	if err != nil {
		return nil, err
	}

	entry, ok := decodeEntry(body)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// Delete removes one cart entry. Only the status code carries meaning; any
// body is discarded.
func (c *Client) Delete(ctx context.Context, entryID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart gateway not configured")
	}
	if strings.TrimSpace(entryID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}

	_, err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(entryID), nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", method))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("execute %s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeServer,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("%s %s failed", method, path),
		).WithDetails(map[string]any{"status": resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, successBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("read %s %s response", method, path))
	}
	return body, nil
}
