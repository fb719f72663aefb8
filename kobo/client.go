// Package kobo is a small client for the KoboToolbox REST API (v2). It covers
// the form, submission and export endpoints needed by the assistant tools and
// passes response documents through mostly untouched.
package kobo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultServer is the primary hosted KoboToolbox server.
	DefaultServer = "https://kf.kobotoolbox.org"
	// EUServer is the European regional server.
	EUServer = "https://eu.kobotoolbox.org"

	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 32 << 20
	maxErrorDetail   = 512
)

// Logger receives debug entries for each HTTP exchange. runtime.JSONLogger
// satisfies it.
type Logger interface {
	Debug(msg string, fields map[string]any)
}

// Credentials identify the server and account. Build them once at startup.
type Credentials struct {
	ServerURL string
	Token     string
	// AuthScheme is the Authorization header scheme. KoboToolbox expects
	// "Token"; "Bearer" works behind some proxies.
	AuthScheme string
}

// NormalizeServer resolves the "eu", "global" and "kf" aliases, defaults an
// empty value to DefaultServer and strips any trailing slash.
func NormalizeServer(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "global", "kf", "default":
		return DefaultServer, nil
	case "eu":
		return EUServer, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Client issues authenticated requests against one KoboToolbox server. It
// holds no mutable state and is safe for concurrent use.
type Client struct {
	server     string
	host       string
	token      string
	scheme     string
	httpClient *http.Client
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger attaches a debug logger.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient validates creds and returns a Client.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(creds.Token)
	if token == "" {
		return nil, ErrMissingToken
	}
	server, err := NormalizeServer(creds.ServerURL)
	if err != nil {
		return nil, err
	}
	u, _ := url.Parse(server)

	scheme := strings.TrimSpace(creds.AuthScheme)
	if scheme == "" {
		scheme = "Token"
	}

	c := &Client{
		server:     server,
		host:       u.Host,
		token:      token,
		scheme:     scheme,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ServerURL returns the normalized server base URL.
func (c *Client) ServerURL() string { return c.server }

// FormURL returns the browsable URL of a form in the web UI.
func (c *Client) FormURL(uid string) string {
	return c.server + "/#/forms/" + uid
}

// AssetURL returns the API URL of an asset.
func (c *Client) AssetURL(uid string) string {
	return c.server + assetPath(uid)
}

// VerifyToken performs a cheap authenticated read to check the credential.
func (c *Client) VerifyToken(ctx context.Context) error {
	q := url.Values{"limit": {"1"}}
	return c.get(ctx, "/api/v2/assets/", q, nil)
}

func assetPath(uid string) string {
	return "/api/v2/assets/" + url.PathEscape(uid) + "/"
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.server + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getURL(ctx, u, out)
}

// getURL fetches an absolute URL such as a pagination "next" link. The token
// is only ever sent to the configured host.
func (c *Client) getURL(ctx context.Context, rawURL string, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	if u.Host != c.host {
		return fmt.Errorf("refusing to follow link to foreign host %q", u.Host)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patchJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.server+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// postMultipart uploads the file at filePath under the "file" field together
// with the given form fields.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, filePath string, out any) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filePath)),
	}
	header["Content-Type"] = []string{spreadsheetContentType(filePath)}
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+path, &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", c.scheme+" "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.logger != nil {
		c.logger.Debug("kobo request", map[string]any{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status: resp.StatusCode,
			Method: req.Method,
			Path:   req.URL.Path,
			Detail: errorDetail(body),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// errorDetail extracts the server's "detail" message, falling back to a
// truncated copy of the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		data, _ := json.Marshal(payload.Detail)
		return string(data)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorDetail {
		s = s[:maxErrorDetail] + "..."
	}
	return s
}

func spreadsheetContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
