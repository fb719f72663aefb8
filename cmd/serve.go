package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bbdaniels/kobo-mcp/mcpserver"
	"github.com/bbdaniels/kobo-mcp/runtime"
)

var (
	serveTransport string
	serveAddr      string
	serveTools     []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: "Run the MCP server over stdio (the default, for desktop clients) or " +
		"streamable HTTP. Logs go to stderr.",
	Args: cobra.NoArgs,
	RunE: serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "transport: stdio or http")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address for the http transport")
	serveCmd.Flags().StringSliceVar(&serveTools, "tools", nil, "expose only these tools (e.g. list_forms,get_form)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	if serveTransport != "stdio" && serveTransport != "http" {
		return fmt.Errorf("unknown transport %q (want stdio or http)", serveTransport)
	}

	logger := newLogger(cmd)
	rc, err := resolveConfig(serveTools)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	reg, err := buildRegistry(rc, logger)
	if err != nil {
		return err
	}

	srv := mcpserver.New(reg, runtime.NewInvoker(reg, logger), appVersion, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("kobo-mcp starting", map[string]any{
		"version":   appVersion,
		"transport": serveTransport,
		"server":    rc.Credentials.ServerURL,
		"tools":     reg.List(),
	})

	if serveTransport == "http" {
		err = srv.ServeHTTP(ctx, serveAddr)
	} else {
		err = srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	logger.Info("kobo-mcp stopped", nil)
	return err
}
