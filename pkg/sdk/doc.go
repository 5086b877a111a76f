// Package sdk provides a typed Go client for the drafty MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per drafty tool
// and retries transport failures via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("drafty", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	summary, _ := c.Summary(ctx)
//	fmt.Println(summary.Sheets, summary.Approved)
package sdk
