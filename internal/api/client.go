// Package api is the HTTP client for the remote books resource.
//
// Each operation issues exactly one request against {base}/books or
// {base}/books/{id}. Responses outside 2xx become *RequestError carrying the
// response body text. Nothing is retried and nothing is cached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"booklib/internal/books"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the books resource of the library service.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client rooted at baseURL (e.g. http://localhost:3001).
// No request timeout is applied; callers bound calls through the context.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// List fetches every book.
func (c *Client) List(ctx context.Context) ([]books.Book, error) {
	var out []books.Book
	if err := c.do(ctx, http.MethodGet, c.collection(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []books.Book{}
	}
	return out, nil
}

// Create stores a new book and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, in books.Input) (books.Book, error) {
	var out books.Book
	if err := c.do(ctx, http.MethodPost, c.collection(), in, &out); err != nil {
		return books.Book{}, err
	}
	return out, nil
}

// Update replaces the book identified by id.
func (c *Client) Update(ctx context.Context, id int64, in books.Input) (books.Book, error) {
	var out books.Book
	if err := c.do(ctx, http.MethodPut, c.item(id), in, &out); err != nil {
		return books.Book{}, err
	}
	return out, nil
}

// Delete removes the book identified by id. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.item(id), nil, nil)
}

func (c *Client) collection() string {
	return c.base.JoinPath("books").String()
}

func (c *Client) item(id int64) string {
	return c.base.JoinPath("books", strconv.FormatInt(id, 10)).String()
}

// do performs one request. body is JSON-encoded when non-nil; out is decoded
// from the response when non-nil.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, target, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}

	rid := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set(RequestIDHeader, rid)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", rid))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return &RequestError{Method: method, URL: target, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	log.Debug("response received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		rerr := newStatusError(method, target, resp.StatusCode, string(text))
		log.Warn("non-success status", zap.Int("status", resp.StatusCode), zap.String("detail", rerr.Message))
		return rerr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Warn("undecodable response", zap.Error(err))
		return &RequestError{
			Method:  method,
			URL:     target,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("invalid response body: %v", err),
			Err:     err,
		}
	}
	return nil
}
