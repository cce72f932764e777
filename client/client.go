// Package client talks to an atlas server's JSON API. A Client is the
// mapview.Backend a map session runs against.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/atlas"
	"github.com/eringen/atlas/mapview"
	"github.com/eringen/atlas/pin"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 15 * time.Second

const csrfCookie = "_csrf"

// ErrRateLimited is returned by Login when the server refuses further attempts.
var ErrRateLimited = errors.New("client: too many login attempts")

// APIError is a non-2xx response that is not an authorization failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: server returned %d", e.Status)
	}
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes requests through a copy of hc; hc itself is not
// modified. The copy gets its own cookie jar when hc has none, since the
// admin session lives in a cookie. DefaultTimeout does not apply: the
// timeout is whatever hc carries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// Client is an atlas API client holding one admin session.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ mapview.Backend = (*Client)(nil)

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

// csrfToken returns the token from the CSRF cookie, fetching one first when
// the jar does not have it yet.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if t := c.cookie(csrfCookie); t != "" {
		return t, nil
	}
	if _, err := c.AdminStatus(ctx); err != nil {
		return "", err
	}
	if t := c.cookie(csrfCookie); t != "" {
		return t, nil
	}
	return "", errors.New("client: server did not issue a csrf token")
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("X-CSRF-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return mapview.ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// AdminStatus reports whether the session is authenticated.
func (c *Client) AdminStatus(ctx context.Context) (bool, error) {
	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/status", nil, &resp); err != nil {
		return false, err
	}
	return resp.Authenticated, nil
}

// Login exchanges the admin secret for an authenticated session. A wrong
// secret returns mapview.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, nil)
}

// Logout ends the admin session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
}

// LoadPins fetches the stored pin collection. The response is decoded with
// the same schema checks the server applies on save.
func (c *Client) LoadPins(ctx context.Context) ([]pin.Pin, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/pins", nil, &raw); err != nil {
		return nil, err
	}
	return pin.Decode(raw)
}

// SavePins replaces the stored pin collection.
func (c *Client) SavePins(ctx context.Context, pins []pin.Pin) error {
	if pins == nil {
		pins = []pin.Pin{}
	}
	return c.do(ctx, http.MethodPost, "/api/pins", pin.Document{Pins: pins}, nil)
}

// SaveCoverPosition stores the focal point of an entry's cover image and
// returns the clamped value the server kept.
func (c *Client) SaveCoverPosition(ctx context.Context, p atlas.CoverPosition) (atlas.CoverPosition, error) {
	var out atlas.CoverPosition
	err := c.do(ctx, http.MethodPost, "/api/cover-position", p, &out)
	return out, err
}

// Entries fetches the pin-linking lookup table.
func (c *Client) Entries(ctx context.Context) ([]mapview.EntrySummary, error) {
	var resp struct {
		Entries []mapview.EntrySummary `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Layers fetches the available map layers and the default one.
func (c *Client) Layers(ctx context.Context) ([]atlas.LayerInfo, string, error) {
	var resp struct {
		Layers  []atlas.LayerInfo `json:"layers"`
		Default string            `json:"default"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/layers", nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Layers, resp.Default, nil
}

// SessionOptions loads everything a new map session starts from: layers,
// the persisted pins and the entry lookup table.
func (c *Client) SessionOptions(ctx context.Context) (mapview.Options, error) {
	infos, def, err := c.Layers(ctx)
	if err != nil {
		return mapview.Options{}, err
	}
	pins, err := c.LoadPins(ctx)
	if err != nil {
		return mapview.Options{}, err
	}
	entries, err := c.Entries(ctx)
	if err != nil {
		return mapview.Options{}, err
	}
	layers := make([]mapview.Layer, 0, len(infos))
	for _, l := range infos {
		layers = append(layers, mapview.Layer{
			Name:     l.Name,
			Title:    l.Title,
			Fallback: mapview.Size{Width: float64(l.Width), Height: float64(l.Height)},
		})
	}
	return mapview.Options{
		Layers:  layers,
		Layer:   def,
		Pins:    pins,
		Entries: entries,
	}, nil
}
