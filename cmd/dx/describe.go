package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fentz26/dx/internal/audit"
	"github.com/fentz26/dx/internal/auth"
	"github.com/fentz26/dx/internal/config"
	"github.com/fentz26/dx/internal/describe"
	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/logging"
	"github.com/fentz26/dx/internal/progress"
	"github.com/fentz26/dx/internal/render"
	"github.com/fentz26/dx/internal/store"
)

// newGateway builds the gateway for an authenticated session. Tests replace
// it with an in-memory gateway.
var newGateway = func(env config.Env, logger *slog.Logger, opts ...gateway.Option) gateway.Gateway {
	opts = append([]gateway.Option{gateway.WithLogger(logger)}, opts...)
	return gateway.NewClient(env.APIServerURL(), env.AuthTokenType, env.AuthToken, opts...)
}

var categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

type describeOptions struct {
	root *rootOptions
	json bool
	try  int
}

func newDescribeCmd(root *rootOptions) *cobra.Command {
	opts := &describeOptions{root: root}
	cmd := &cobra.Command{
		Use:   "describe <id>...",
		Short: "Describe one or more objects",
		Long: `Describe prints a normalized description of each object identifier, in
input order. A failing identifier is reported on stderr and never stops the
others.

Exit status: 0 all described, 2 some failed, 3 all failed, 4 session error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print JSON instead of the text report")
	cmd.Flags().IntVar(&opts.try, "try", 0, "Describe a specific restart attempt of a job")
	return cmd
}

func runDescribe(cmd *cobra.Command, args []string, opts *describeOptions) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if opts.try < 0 {
		return fmt.Errorf("--try must not be negative, got %d", opts.try)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(stderr, opts.root.debug)

	dir, err := opts.root.dir()
	if err != nil {
		return err
	}
	settings, err := opts.root.settings(dir)
	if err != nil {
		return err
	}
	mgr, err := auth.NewManager(dir)
	if err != nil {
		return err
	}
	env, err := mgr.RequireSession()
	if err != nil {
		return &ExitError{Code: describe.ExitFatal, Err: err}
	}

	var gwOpts []gateway.Option
	if cmd.Flags().Changed("try") {
		gwOpts = append(gwOpts, gateway.WithJobTry(opts.try))
	}
	gw := newGateway(env, logger, gwOpts...)

	descOpts := []describe.Option{describe.WithLogger(logger)}
	if settings.History.Enabled {
		st, err := store.New(settings.HistoryPath(dir))
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer st.Close()
			descOpts = append(descOpts, describe.WithRecorder(audit.NewHistoryWriter(st)))
		}
	}
	if len(args) > 1 && !opts.root.debug && logging.IsTerminal(stderr) {
		descOpts = append(descOpts, describe.WithObserver(progress.New(stderr)))
	}

	d := describe.New(gw, describe.Config{
		Scheduler:      settings.Scheduler(),
		Timeout:        settings.Describe.Timeout,
		MaxAttempts:    settings.Describe.MaxAttempts,
		InitialBackoff: settings.Describe.InitialBackoff,
		MaxBackoff:     settings.Describe.MaxBackoff,
		Required:       settings.RequiredFields(),
	}, descOpts...)

	batch, _ := d.DescribeMany(ctx, args, render.Options{JSON: opts.json, Debug: opts.root.debug})
	printBatch(stdout, stderr, batch, opts)

	if batch.Fatal != nil {
		fmt.Fprintln(stderr, batch.Fatal)
	}
	if code := batch.ExitStatus(); code != describe.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// printBatch writes bodies to stdout, separated by a blank line, and
// failures and traces to stderr, in input order.
func printBatch(stdout, stderr io.Writer, batch *describe.Batch, opts *describeOptions) {
	color := logging.IsTerminal(stderr)
	printed := 0
	for i := range batch.Results {
		res := &batch.Results[i]
		switch {
		case res.OK():
			if printed > 0 {
				fmt.Fprintln(stdout)
			}
			io.WriteString(stdout, ensureNewline(res.Output))
			printed++
		case res.Err != nil:
			category := string(res.Err.Category)
			if color {
				category = categoryStyle.Render(category)
			}
			fmt.Fprintf(stderr, "%s: %s: %v\n", res.Input, category, res.Err.Err)
		case res.Skipped:
			fmt.Fprintf(stderr, "%s: skipped\n", res.Input)
		}
		if opts.root.debug && res.Trace != nil {
			io.WriteString(stderr, res.Trace.Render())
		}
	}
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
