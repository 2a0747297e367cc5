package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mangasrc config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
