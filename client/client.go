// Package client fetches widget feeds over HTTP or from local files.
//
// Every failure to obtain or decode a payload is returned as a *TransportError
// so callers can tell "could not fetch" apart from "fetched, but nothing usable".
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrNoURL is returned when a widget has no feed configured.
var ErrNoURL = errors.New("no feed URL configured")

// DefaultTimeout bounds a single fetch when the config does not set one.
const DefaultTimeout = 30 * time.Second

// TransportError describes a failed fetch or an undecodable top-level payload.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d while fetching %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client is a small HTTP client for JSON and protobuf feeds.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given per-request timeout; zero uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// FetchBytes returns the raw body of a URL, or the contents of a local file
// when urlOrPath is not an http(s) URL.
func (c *Client) FetchBytes(ctx context.Context, urlOrPath string) ([]byte, error) {
	if urlOrPath == "" {
		return nil, ErrNoURL
	}
	if !isHTTP(urlOrPath) {
		b, err := os.ReadFile(urlOrPath)
		if err != nil {
			return nil, &TransportError{URL: urlOrPath, Err: err}
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, &TransportError{URL: urlOrPath, Err: err}
	}
	// every poll must see fresh data
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: urlOrPath, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: urlOrPath, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: urlOrPath, Err: err}
	}
	return b, nil
}

// FetchJSON fetches urlOrPath and decodes it as a single JSON value. Numbers
// are kept as json.Number so millisecond timestamps keep every digit.
func (c *Client) FetchJSON(ctx context.Context, urlOrPath string) (any, error) {
	b, err := c.FetchBytes(ctx, urlOrPath)
	if err != nil {
		return nil, err
	}
	v, err := DecodeJSON(b)
	if err != nil {
		return nil, &TransportError{URL: urlOrPath, Err: err}
	}
	return v, nil
}

// DecodeJSON decodes exactly one JSON value from b.
func DecodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: trailing data after top-level value")
	}
	return v, nil
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
