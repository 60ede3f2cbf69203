package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fentz26/dx/internal/config"
)

// ExitError ends the process with Code. Err, when set, is printed first;
// otherwise the command has already written its own output.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// rootOptions holds the persistent flags.
type rootOptions struct {
	debug     bool
	configDir string
}

// dir returns the configuration directory: --config, or config.Dir.
func (o *rootOptions) dir() (string, error) {
	if o.configDir != "" {
		return o.configDir, nil
	}
	return config.Dir()
}

func (o *rootOptions) settings(dir string) (*config.Settings, error) {
	return config.LoadSettings(filepath.Join(dir, config.SettingsFile))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "dx",
		Short: "dx - describe platform objects",
		Long: `dx prints normalized descriptions of platform objects (files, jobs,
analyses, apps, applets, databases, records, projects and containers).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Print a debug trace for each identifier and debug logs to stderr")
	root.PersistentFlags().StringVar(&opts.configDir, "config", "", "Configuration directory (default $DX_USER_CONF_DIR or ~/.dnanexus_config)")

	root.AddCommand(newDescribeCmd(opts))
	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newEnvCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		var e *ExitError
		if errors.As(err, &e) && e.Err != nil {
			fmt.Fprintln(stderr, "Error:", e.Err)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}
