package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

const defaultBaseURL = "http://localhost:3001/api"

// APIError is a normalized request failure.
//
// Message prefers the server's "message" field and falls back to an
// operation-specific default. Status is zero for transport failures.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// Unwrap exposes the matching sentinel (ErrNotFound for 404, ErrAPIRequest otherwise) and the cause.
func (e *APIError) Unwrap() []error {
	sentinel := shared.ErrAPIRequest
	if e.Status == http.StatusNotFound {
		sentinel = shared.ErrNotFound
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// ErrorMessage returns the human-readable message carried by err, or fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}

// fail normalizes err into an [APIError] whose message is the server's when available.
func fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &APIError{Status: apiErr.Status, Message: msg, Err: err}
	}
	return &APIError{Message: fallback, Err: err}
}

// Response is a decoded API envelope.
type Response struct {
	Status  int
	Message string
	Data    json.RawMessage
	Meta    json.RawMessage
}

// Client performs JSON requests against the media API.
//
// Authentication, rate limiting and retries live in the [http.Client]'s
// transport chain (see [NewPipeline]); Client only builds requests and
// decodes the {data, meta} envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a new API client. Empty baseURL and nil client fall back to defaults.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "api"),
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request and decodes the response envelope.
//
// Status codes of 400 and above become an [*APIError].
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return decodeEnvelope(resp.StatusCode, raw)
}

// newAPIError builds an [APIError] from an error response body.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// decodeEnvelope splits {data, meta, message}. A body without a "data" key is itself the payload.
func decodeEnvelope(status int, raw []byte) (*Response, error) {
	out := &Response{Status: status}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		out.Data = raw
		return out, nil
	}

	data, ok := fields["data"]
	if !ok {
		out.Data = raw
		return out, nil
	}
	out.Data = data
	out.Meta = fields["meta"]
	if msg, ok := fields["message"]; ok {
		_ = json.Unmarshal(msg, &out.Message)
	}
	return out, nil
}

// Paged is one page of a collection.
type Paged[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

type pageMeta struct {
	Pagination  models.Pagination `json:"pagination"`
	UnreadCount *int              `json:"unreadCount,omitempty"`
}

// decode unmarshals the envelope payload into T.
func decode[T any](resp *Response) (T, error) {
	var out T
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// decodePage unmarshals a paginated envelope.
func decodePage[T any](resp *Response) (*Paged[T], pageMeta, error) {
	items, err := decode[[]T](resp)
	if err != nil {
		return nil, pageMeta{}, err
	}
	var meta pageMeta
	if len(resp.Meta) > 0 {
		if err := json.Unmarshal(resp.Meta, &meta); err != nil {
			return nil, pageMeta{}, fmt.Errorf("failed to decode pagination: %w", err)
		}
	}
	if items == nil {
		items = []T{}
	}
	return &Paged[T]{Items: items, Pagination: meta.Pagination}, meta, nil
}

// get is shorthand for a GET decoded into T.
func get[T any](ctx context.Context, c *Client, path string, query url.Values, fallback string) (T, error) {
	var zero T
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return zero, fail(err, fallback)
	}
	out, err := decode[T](resp)
	if err != nil {
		return zero, fail(err, fallback)
	}
	return out, nil
}

// send is shorthand for a body-carrying request decoded into T.
func send[T any](ctx context.Context, c *Client, method, path string, body any, fallback string) (T, error) {
	var zero T
	resp, err := c.Do(ctx, method, path, nil, body)
	if err != nil {
		return zero, fail(err, fallback)
	}
	out, err := decode[T](resp)
	if err != nil {
		return zero, fail(err, fallback)
	}
	return out, nil
}

// exec sends a request whose response body is ignored.
func exec(ctx context.Context, c *Client, method, path string, query url.Values, body any, fallback string) error {
	if _, err := c.Do(ctx, method, path, query, body); err != nil {
		return fail(err, fallback)
	}
	return nil
}

// list fetches one page of a collection.
func list[T any](ctx context.Context, c *Client, path string, query url.Values, fallback string) (*Paged[T], pageMeta, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, pageMeta{}, fail(err, fallback)
	}
	page, meta, err := decodePage[T](resp)
	if err != nil {
		return nil, pageMeta{}, fail(err, fallback)
	}
	return page, meta, nil
}

// isNotFound reports a 404 or a server message saying "not found".
func isNotFound(err error) bool {
	if errors.Is(err, shared.ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "not found")
}

// segment escapes an id for use as a path segment.
func segment(id string) string {
	return url.PathEscape(id)
}
