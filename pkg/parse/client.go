// Package parse talks to the document parsing service.
package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
)

// DefaultTimeout bounds one upload round trip.
const DefaultTimeout = 5 * time.Minute

// ErrParseFailed is matched by every *Error.
var ErrParseFailed = errors.New("parse request failed")

// Error describes a failed parse request: a transport failure, a non-2xx
// status or a response that does not match the expected shape.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		msg := fmt.Sprintf("parse service returned %d", e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	case e.Err != nil:
		return "parse request failed: " + e.Err.Error()
	default:
		return "parse request failed"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is to work with Error.
func (e *Error) Is(target error) bool {
	return target == ErrParseFailed
}

// Upload is one file to send under its category field.
type Upload struct {
	Category session.Category
	Path     string
}

// UploadsFrom converts a selection to uploads in category order.
func UploadsFrom(sel *session.Selection) []Upload {
	items := sel.All()
	out := make([]Upload, 0, len(items))
	for _, it := range items {
		out = append(out, Upload{Category: it.Category, Path: it.Path})
	}
	return out
}

// Result is a decoded response plus the raw payload it came from.
type Result struct {
	Set *drawing.Set
	Raw json.RawMessage
}

// Client posts files to <BaseURL>/parse.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Endpoint returns the full parse URL.
func (c *Client) Endpoint() string {
	return c.baseURL + "/parse"
}

// Parse uploads files in one multipart request and decodes the response.
func (c *Client) Parse(ctx context.Context, files []Upload) (*Result, error) {
	body, contentType, err := buildBody(files)
	if err != nil {
		return nil, err
	}

	t := timeout.New[*Result](timeout.Config{DefaultTimeout: c.timeout})
	res, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*Result, error) {
		return c.post(ctx, body, contentType, len(files))
	})
	if err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			err = &Error{Err: err}
		}
		c.logger.Warn("parse request failed", zap.String("endpoint", c.Endpoint()), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, body []byte, contentType string, n int) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: 0, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("parse response",
		zap.Int("status", resp.StatusCode),
		zap.Int("files", n),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: snippet(data)}
	}

	if err := ValidatePayload(data); err != nil {
		return nil, &Error{Err: err}
	}
	set, err := drawing.Decode(data)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &Result{Set: set, Raw: json.RawMessage(data)}, nil
}

func buildBody(files []Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		if !f.Category.IsValid() {
			return nil, "", fmt.Errorf("invalid upload category: %s", f.Category)
		}
		if err := addFile(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func addFile(w *multipart.Writer, f Upload) error {
	// #nosec G304 -- paths come from the user's own selection
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer func() { _ = src.Close() }()

	part, err := w.CreateFormFile(string(f.Category), filepath.Base(f.Path))
	if err != nil {
		return fmt.Errorf("add %s: %w", f.Path, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", f.Path, err)
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
