package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bbdaniels/kobo-mcp/config"
	"github.com/bbdaniels/kobo-mcp/internal/tui"
	"github.com/bbdaniels/kobo-mcp/internal/tui/steps"
	"github.com/bbdaniels/kobo-mcp/kobo"
	"github.com/bbdaniels/kobo-mcp/runtime"
	"github.com/bbdaniels/kobo-mcp/tools/kobotools"
	"github.com/bbdaniels/kobo-mcp/types"
)

// initOptions holds the answers collected by either init mode.
type initOptions struct {
	Server     string
	Token      string
	Tools      []string
	SkipVerify bool
	Force      bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up server and API token",
	Long: "Write kobo.yaml with the server and tool settings and store the API " +
		"token in the .env file. Runs an interactive wizard on a terminal.",
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("non-interactive", false, "run without prompts (requires --token or KOBO_API_TOKEN)")
	initCmd.Flags().String("token", "", "KoboToolbox API token")
	initCmd.Flags().StringSlice("tools", nil, "expose only these tools")
	initCmd.Flags().Bool("skip-verify", false, "do not check the token against the server")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	opts := &initOptions{Server: serverURL}
	opts.Token, _ = cmd.Flags().GetString("token")
	opts.Tools, _ = cmd.Flags().GetStringSlice("tools")
	opts.SkipVerify, _ = cmd.Flags().GetBool("skip-verify")
	opts.Force, _ = cmd.Flags().GetBool("force")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	if !opts.Force {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}
	}

	var err error
	if nonInteractive || !term.IsTerminal(int(os.Stdin.Fd())) {
		err = collectNonInteractive(cmd.Context(), opts)
	} else {
		err = collectInteractive(opts)
	}
	if err != nil {
		return err
	}

	if err := config.WriteKoboConfig(cfgFile, &types.KoboConfig{Server: opts.Server, Tools: opts.Tools}, opts.Force); err != nil {
		return err
	}
	if err := runtime.SetEnvFileVar(envFile, runtime.EnvToken, opts.Token); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (server %s)\n", cfgFile, opts.Server)
	fmt.Fprintf(out, "Stored %s in %s\n", runtime.EnvToken, envFile)
	fmt.Fprintf(out, "\nStart the server with:\n  kobo-mcp serve\n")
	return nil
}

func collectNonInteractive(ctx context.Context, opts *initOptions) error {
	if opts.Token == "" {
		opts.Token = os.Getenv(runtime.EnvToken)
	}
	if opts.Token == "" {
		return fmt.Errorf("%w: pass --token or set %s", kobo.ErrMissingToken, runtime.EnvToken)
	}

	server, err := kobo.NormalizeServer(opts.Server)
	if err != nil {
		return err
	}
	opts.Server = server

	if err := runtime.ValidateTools(opts.Tools, kobotools.Names()); err != nil {
		return err
	}
	if opts.SkipVerify {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := verifyToken(ctx, opts.Server, opts.Token); err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}
	return nil
}

func collectInteractive(opts *initOptions) error {
	theme := tui.DetectTheme(themeOverride)
	styles := tui.NewStyleSet(theme)

	validate := steps.ValidateTokenFunc(verifyToken)
	if opts.SkipVerify {
		validate = nil
	}

	var toolInfos []steps.ToolInfo
	for _, name := range kobotools.Names() {
		toolInfos = append(toolInfos, steps.ToolInfo{Name: name, Description: firstSentence(kobotools.GetByName(name).Description())})
	}

	wizard := tui.NewWizardModel(theme, []tui.Step{
		steps.NewServerStep(styles),
		steps.NewTokenStep(styles, validate),
		steps.NewToolsStep(styles, toolInfos),
		steps.NewReviewStep(styles, cfgFile, envFile),
	}, appVersion)

	final, err := tea.NewProgram(wizard).Run()
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	result, ok := final.(tui.WizardModel)
	if !ok {
		return errors.New("unexpected wizard state")
	}
	if result.Err() != nil {
		return result.Err()
	}
	if !result.Done() {
		return tui.ErrCancelled
	}

	ctx := result.Context()
	opts.Server = ctx.Server
	opts.Token = ctx.Token
	opts.Tools = ctx.Tools
	return nil
}

// verifyToken performs one authenticated request against server.
func verifyToken(ctx context.Context, server, token string) error {
	client, err := kobo.NewClient(kobo.Credentials{ServerURL: server, Token: token})
	if err != nil {
		return err
	}
	return client.VerifyToken(ctx)
}
