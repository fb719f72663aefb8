// Package mcpserver exposes the tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bbdaniels/kobo-mcp/runtime"
	"github.com/bbdaniels/kobo-mcp/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Name is the server name advertised during initialization.
const Name = "kobo-mcp"

const instructions = `Tools for a KoboToolbox account.

- list_forms / get_form to discover forms and read their questions.
- get_submissions returns one page; advance start by limit until start >= count.
- deploy_form uploads a local XLSForm as a new form. replace_form updates an existing form in place and keeps its submissions.
- export_data builds a CSV or XLS export. If it times out, call get_export with the export uid from the error.

Errors are JSON objects of the form {"error": {"kind": ..., "message": ...}}. A partial_failure means earlier steps took effect and were not rolled back.`

// Server wires a tool registry to an MCP server.
type Server struct {
	mcp     *server.MCPServer
	invoker *runtime.Invoker
	logger  runtime.Logger
}

// New registers every tool in reg with a new MCP server. Calls go through
// inv so they are logged and errors become JSON error results.
func New(reg *tools.Registry, inv *runtime.Invoker, version string, logger runtime.Logger) *Server {
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	s := &Server{
		mcp: server.NewMCPServer(
			Name,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
		invoker: inv,
		logger:  logger,
	}

	for _, def := range reg.Definitions() {
		tool := mcp.NewToolWithRawSchema(def.Name, def.Description, def.InputSchema)
		s.mcp.AddTool(tool, s.handler(def.Name))
	}
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(tools.ErrorJSON(fmt.Errorf("encoding arguments: %w", err))), nil
		}
		res := s.invoker.Invoke(ctx, name, args)
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

// ServeStdio serves MCP over the given streams until ctx is cancelled or in
// reaches EOF. Nothing but protocol messages may be written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(logWriter{s.logger}, "", 0))

	s.logger.Info("serving", map[string]any{"transport": "stdio"})
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := server.NewStreamableHTTPServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", map[string]any{"transport": "http", "addr": addr})
		errCh <- httpSrv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http transport: %w", err)
		}
		s.logger.Info("stopped", map[string]any{"transport": "http"})
		return nil
	}
}

// logWriter adapts the transport's *log.Logger output to structured logs.
type logWriter struct{ logger runtime.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Error("mcp transport", map[string]any{"detail": strings.TrimSpace(string(p))})
	return len(p), nil
}
