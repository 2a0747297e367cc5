package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/config"
	"github.com/okibe/mangasrc/internal/profiles"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available source profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{IgnoreConfig: flagIgnoreConfig})
		if err != nil {
			return err
		}

		names, err := profiles.Names(cfg.ProfileDir)
		if err != nil {
			return err
		}

		for _, name := range names {
			mark := "  "
			if strings.TrimSuffix(name, " (user)") == cfg.Source {
				mark = "* "
			}
			fmt.Println(mark + name)
		}

		return nil
	},
}

var sourcesSwitchCmd = &cobra.Command{
	Use:   "switch [name]",
	Short: "Set the active source profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, usedPath, err := config.LoadMerged(config.Options{IgnoreConfig: flagIgnoreConfig})
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			names, err := profiles.Names(cfg.ProfileDir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no source profiles available")
			}

			prompt := promptui.Select{
				Label: "Select source",
				Items: names,
			}

			idx, _, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}

			name = strings.TrimSuffix(names[idx], " (user)")
		}

		if _, err := profiles.Resolve(name, cfg.ProfileDir); err != nil {
			return err
		}

		cfg.Source = name

		activePath, err := config.ActiveConfigPath()
		if err == config.ErrNoConfig {
			return fmt.Errorf("no active config; run `mangasrc config init` first (tried %s)", usedPath)
		}
		if err != nil {
			return err
		}

		if err := config.SaveYAML(cfg, activePath); err != nil {
			return err
		}

		fmt.Println("Active source:", name)
		return nil
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesSwitchCmd)
	rootCmd.AddCommand(sourcesCmd)
}
