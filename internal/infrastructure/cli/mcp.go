package cli

import (
	"fmt"
	"os"
	"strings"

	inframcp "github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Drafty MCP server",
	Long: `Start the Drafty MCP server.

The server answers from the saved session of the workspace, so run
'drafty submit' first. Tools see sheets advanced from other commands
without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("DRAFTY_SKIP_MCP_START") == "true" {
			return nil
		}
		ctx, stop := signalContext(cmd)
		defer stop()

		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		// stdout carries the stdio transport; notices go to stderr only.
		services, err := loadServices(ctx, root, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeServices(services)

		server := inframcp.NewServer(services)
		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			err = server.ServeStdio(ctx)
		case "http":
			err = server.ServeHTTP(ctx, mcpAddr)
		case "ws", "websocket":
			err = server.ServeWebSocket(ctx, mcpAddr)
		default:
			return fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
		return ignoreCanceled(err)
	},
}

func init() {
	inframcp.Version = Version
	inframcp.BuildCommit = Commit
	inframcp.BuildDate = Date
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws transports")
	RootCmd.AddCommand(mcpCmd)
}
