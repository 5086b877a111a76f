package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
)

// SupportedSchemaMajor is the server schema major version this client
// understands.
const SupportedSchemaMajor = "1"

// Client is a typed Go client for the drafty MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
}

type options struct {
	timeout      time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

// Option configures the client.
type Option func(*options)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry configures how often transport failures are retried.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}

// NewClient creates a client over the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := options{
		timeout:      30 * time.Second,
		maxAttempts:  3,
		initialDelay: 250 * time.Millisecond,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp: client.New(transport, client.WithTimeout(o.timeout)),
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool, retrying transport errors. Error results are not
// retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

func unmarshalText[T any](result *client.ToolResult) (T, error) {
	var v T
	text, err := textResult(result)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return v, fmt.Errorf("unmarshal: %w", err)
	}
	return v, nil
}

func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// Summary returns totals for the parsed drawing set.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	res, err := c.call(ctx, "drafty_summary", nil)
	if err != nil {
		return nil, err
	}
	s, err := unmarshalText[Summary](res)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Sheets lists parsed sheets matching req.
func (c *Client) Sheets(ctx context.Context, req SheetsRequest) ([]Sheet, error) {
	args := map[string]any{}
	if req.Query != "" {
		args["query"] = req.Query
	}
	if req.Status != "" {
		args["status"] = req.Status
	}
	res, err := c.call(ctx, "drafty_sheets", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[[]Sheet](res)
}

// Advance moves sheet one review step and returns the server's message.
func (c *Client) Advance(ctx context.Context, sheet string) (string, error) {
	return c.AdvanceTo(ctx, sheet, "")
}

// AdvanceTo moves sheet to status, which must be the next step. An empty
// status means the next step.
func (c *Client) AdvanceTo(ctx context.Context, sheet, status string) (string, error) {
	args := map[string]any{"sheet": sheet}
	if status != "" {
		args["status"] = status
	}
	res, err := c.call(ctx, "drafty_advance_sheet", args)
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// ExportCSV returns every sheet as CSV.
func (c *Client) ExportCSV(ctx context.Context) (string, error) {
	res, err := c.call(ctx, "drafty_export_csv", nil)
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// GetSchema reads the drafty://schema resource.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, "drafty://schema")
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible returns an error when the server schema major version differs
// from SupportedSchemaMajor.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	if major := majorVersion(info.SchemaVersion); major != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, major, SupportedSchemaMajor)
	}
	return nil
}

func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}
