package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bbdaniels/kobo-mcp/runtime"
	"github.com/bbdaniels/kobo-mcp/tools/kobotools"
)

var toolCallArgs string

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Inspect and call KoboToolbox tools",
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available tools",
	Args:  cobra.NoArgs,
	RunE:  toolListRun,
}

var toolDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show tool details and schema",
	Args:  cobra.ExactArgs(1),
	RunE:  toolDescribeRun,
}

var toolCallCmd = &cobra.Command{
	Use:   "call <name>",
	Short: "Call a tool once and print its JSON result",
	Long: "Call a tool once against the configured server. The result, or the " +
		"structured error, is printed to stdout; logs go to stderr.",
	Args: cobra.ExactArgs(1),
	RunE: toolCallRun,
}

func init() {
	toolCallCmd.Flags().StringVar(&toolCallArgs, "args", "{}", "tool arguments as a JSON object")

	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolDescribeCmd)
	toolCmd.AddCommand(toolCallCmd)
}

func toolListRun(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tCATEGORY\tDESCRIPTION\n")

	for _, name := range kobotools.Names() {
		t := kobotools.GetByName(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name(), t.Category(), firstSentence(t.Description()))
	}
	return w.Flush()
}

func firstSentence(s string) string {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '.' && s[i+1] == ' ' {
			return s[:i+1]
		}
	}
	return s
}

func toolDescribeRun(cmd *cobra.Command, args []string) error {
	t := kobotools.GetByName(args[0])
	if t == nil {
		return fmt.Errorf("unknown tool: %q", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:        %s\n", t.Name())
	fmt.Fprintf(out, "Category:    %s\n", t.Category())
	fmt.Fprintf(out, "Description: %s\n", t.Description())
	fmt.Fprintf(out, "\nInput Schema:\n")

	var schema any
	if json.Unmarshal(t.InputSchema(), &schema) == nil {
		data, _ := json.MarshalIndent(schema, "", "  ")
		fmt.Fprintf(out, "%s\n", data)
	}
	return nil
}

// errToolCall is returned after a failed call's payload has been printed.
var errToolCall = errors.New("tool call failed")

func toolCallRun(cmd *cobra.Command, args []string) error {
	name := args[0]
	if kobotools.GetByName(name) == nil {
		return fmt.Errorf("unknown tool: %q", name)
	}

	logger := newLogger(cmd)
	rc, err := resolveConfig(nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	reg, err := buildRegistry(rc, logger)
	if err != nil {
		return err
	}
	if reg.Get(name) == nil {
		return fmt.Errorf("tool %q is not in the configured allow-list", name)
	}

	res := runtime.NewInvoker(reg, logger).Invoke(cmd.Context(), name, json.RawMessage(toolCallArgs))
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	if res.IsError {
		return fmt.Errorf("%w: %s", errToolCall, res.Kind)
	}
	return nil
}
