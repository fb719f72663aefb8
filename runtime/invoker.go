package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/tools"
	"github.com/google/uuid"
)

// ToolExecutor runs a named tool. *tools.Registry satisfies it.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, arguments json.RawMessage) (string, error)
}

// Result is the outcome of one tool call. On failure Text holds the JSON
// error payload and Kind its classification.
type Result struct {
	CallID  string
	Text    string
	IsError bool
	Kind    kobo.Kind
}

// Invoker runs tools and logs each call with a correlation id.
type Invoker struct {
	exec   ToolExecutor
	logger Logger
	newID  func() string
}

// NewInvoker creates an Invoker. A nil logger discards log entries.
func NewInvoker(exec ToolExecutor, logger Logger) *Invoker {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Invoker{exec: exec, logger: logger, newID: uuid.NewString}
}

// Invoke runs the named tool. Errors are converted into an error Result,
// never returned, so the caller can always hand something back.
func (i *Invoker) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	res := Result{CallID: i.newID()}
	fields := map[string]any{"call_id": res.CallID, "tool": name}
	i.logger.Debug("tool call started", fields)

	start := time.Now()
	out, err := i.exec.Execute(ctx, name, args)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		res.IsError = true
		res.Kind = kobo.KindOf(err)
		res.Text = tools.ErrorJSON(err)
		fields["kind"] = string(res.Kind)
		fields["error"] = err.Error()
		if res.Kind == kobo.KindTransport || res.Kind == kobo.KindPartialFailure {
			i.logger.Error("tool call failed", fields)
		} else {
			i.logger.Warn("tool call failed", fields)
		}
		return res
	}

	res.Text = out
	fields["bytes"] = len(out)
	i.logger.Info("tool call completed", fields)
	return res
}
