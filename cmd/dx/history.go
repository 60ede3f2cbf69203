package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fentz26/dx/internal/store"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent describe outcomes",
		Long: `History lists the outcomes recorded by describe when history.enabled is
set in dx.yaml, newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.dir()
			if err != nil {
				return err
			}
			settings, err := root.settings(dir)
			if err != nil {
				return err
			}
			path := settings.HistoryPath(dir)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded. Set history.enabled in dx.yaml.")
				return nil
			}
			st, err := store.New(path)
			if err != nil {
				return err
			}
			defer st.Close()

			if clearAll {
				n, err := st.ClearHistory(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
				return nil
			}

			entries, err := st.ListHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tINPUT\tSTATUS\tATTEMPTS\tELAPSED\tDETAIL")
			for _, e := range entries {
				detail := e.Category
				if e.Message != "" {
					detail += ": " + e.Message
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					humanize.Time(e.CreatedAt), e.Input, e.Status, e.Attempts,
					(time.Duration(e.ElapsedMS) * time.Millisecond).String(), detail)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded entries")
	return cmd
}
