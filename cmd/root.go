package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagSource       string
	flagBypass       bool
	flagUserAgent    string
)

var rootCmd = &cobra.Command{
	Use:   "mangasrc",
	Short: "Scrape manga sources: discovery, search, metadata, chapters, pages",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "extraction profile to use (see `mangasrc sources`)")
	rootCmd.PersistentFlags().BoolVar(&flagBypass, "bypass", false, "route requests through the Cloudflare bypass transport")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
