package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/config"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available configs",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := config.ListConfigs()
		if err != nil {
			return fmt.Errorf("cannot read configs directory: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "LABEL\tPATH\tACTIVE")

		for _, c := range list {
			mark := ""
			if c.Active {
				mark = "yes"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Label, c.Path, mark)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
