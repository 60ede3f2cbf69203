package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/dx/internal/auth"
)

func newLoginCmd(root *rootOptions) *cobra.Command {
	var opts auth.LoginOptions
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for later commands",
		Long: `Login saves a pre-issued API token, and optionally the API server and
project it belongs to, in dx_env.json. Fields that are not given keep their
current values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.dir()
			if err != nil {
				return err
			}
			mgr, err := auth.NewManager(dir)
			if err != nil {
				return err
			}
			env, err := mgr.Login(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", env.APIServerURL())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Token, "token", "", "API token")
	cmd.Flags().StringVar(&opts.TokenType, "token-type", "", "Token type (default Bearer)")
	cmd.Flags().StringVar(&opts.Host, "host", "", "API server host")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "API server port")
	cmd.Flags().StringVar(&opts.Protocol, "protocol", "", "API server protocol")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project context id")
	cmd.Flags().StringVar(&opts.Username, "user", "", "User name shown by 'dx env'")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.dir()
			if err != nil {
				return err
			}
			mgr, err := auth.NewManager(dir)
			if err != nil {
				return err
			}
			if err := mgr.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newEnvCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the current session environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.dir()
			if err != nil {
				return err
			}
			mgr, err := auth.NewManager(dir)
			if err != nil {
				return err
			}
			env := mgr.GetEnv()
			user := env.Username
			if !mgr.IsAuthenticated() {
				user = "(not logged in)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API server protocol\t%s\n", env.APIServerProtocol)
			fmt.Fprintf(out, "API server host\t\t%s\n", env.APIServerHost)
			fmt.Fprintf(out, "API server port\t\t%d\n", env.APIServerPort)
			fmt.Fprintf(out, "Current workspace\t%s\n", orNone(env.ProjectContextID))
			fmt.Fprintf(out, "Current workspace name\t%s\n", orNone(env.ProjectContextName))
			fmt.Fprintf(out, "Current folder\t\t%s\n", orNone(env.CLIWorkingDir))
			fmt.Fprintf(out, "Current user\t\t%s\n", orNone(user))
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
