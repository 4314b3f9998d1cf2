// Package listing talks to the file-listing endpoint that walks a source
// directory on the server side.
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kyaoi/codepick/internal/tree"
)

const (
	listPath         = "/list_files"
	sourcePathParam  = "source_code_path"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 32 << 20
)

// ErrEmptyPath is returned when no source path was given.
var ErrEmptyPath = errors.New("please enter a source code path")

// ServiceError is an error reported by the listing service itself.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// remoteFile is the wire shape of one listed file. The field name follows
// the browser File API and is part of the service contract.
type remoteFile struct {
	WebkitRelativePath string `json:"webkitRelativePath"`
	Name               string `json:"name,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Client fetches file listings over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is used as
// given; WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must include scheme and host", baseURL)
	}
	c := &Client{
		baseURL: u,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// List returns the files found under sourcePath on the server.
func (c *Client) List(ctx context.Context, sourcePath string) ([]tree.Entry, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, ErrEmptyPath
	}

	endpoint := c.endpoint(sourcePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}
	c.logger.Debug("listing response",
		"path", sourcePath,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, body)
	}
	return decodeListing(resp.StatusCode, body)
}

func (c *Client) endpoint(sourcePath string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + listPath
	q := u.Query()
	q.Set(sourcePathParam, sourcePath)
	u.RawQuery = q.Encode()
	return u.String()
}

func statusError(resp *http.Response, body []byte) error {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &ServiceError{Status: resp.StatusCode, Message: payload.Error}
	}
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = resp.Status
	}
	return &ServiceError{Status: resp.StatusCode, Message: "server error: " + text}
}

// decodeListing accepts either the file array or an {error} object.
func decodeListing(status int, body []byte) ([]tree.Entry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode file list: empty response")
	}

	if trimmed[0] == '{' {
		var payload errorPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("decode file list: %w", err)
		}
		if payload.Error == "" {
			return nil, fmt.Errorf("decode file list: unexpected object response")
		}
		return nil, &ServiceError{Status: status, Message: payload.Error}
	}

	var files []remoteFile
	if err := json.Unmarshal(trimmed, &files); err != nil {
		return nil, fmt.Errorf("decode file list: %w", err)
	}
	return toEntries(files), nil
}

func toEntries(files []remoteFile) []tree.Entry {
	entries := make([]tree.Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, tree.Entry{RelativePath: f.WebkitRelativePath})
	}
	return entries
}
