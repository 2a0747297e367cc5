package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/config"
	"github.com/okibe/mangasrc/internal/fetch"
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage stored cookies used for bot-challenge recovery",
}

var cookiesSetCmd = &cobra.Command{
	Use:   "set <domain> <name>=<value>",
	Short: "Store a cookie for a domain (e.g. a solved cf_clearance)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value, ok := strings.Cut(args[1], "=")
		if !ok || name == "" {
			return fmt.Errorf("bad cookie %q, want name=value", args[1])
		}

		store, err := fetch.OpenCookieStore(config.CookieFile())
		if err != nil {
			return err
		}
		if err := store.Set(args[0], name, value); err != nil {
			return err
		}

		fmt.Printf("Stored %s for %s\n", name, args[0])
		return nil
	},
}

var cookiesListCmd = &cobra.Command{
	Use:   "list <domain>",
	Short: "List cookies stored for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := fetch.OpenCookieStore(config.CookieFile())
		if err != nil {
			return err
		}

		cookies := store.Get(args[0])
		if len(cookies) == 0 {
			fmt.Println("No cookies stored.")
			return nil
		}

		names := make([]string, 0, len(cookies))
		for name := range cookies {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%s=%s\n", name, cookies[name])
		}
		return nil
	},
}

var cookiesClearCmd = &cobra.Command{
	Use:   "clear <domain> [name]",
	Short: "Delete one cookie, or all cookies for a domain",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := fetch.OpenCookieStore(config.CookieFile())
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		if err := store.Delete(args[0], name); err != nil {
			return err
		}

		fmt.Println("Done.")
		return nil
	},
}

func init() {
	cookiesCmd.AddCommand(cookiesSetCmd)
	cookiesCmd.AddCommand(cookiesListCmd)
	cookiesCmd.AddCommand(cookiesClearCmd)
	rootCmd.AddCommand(cookiesCmd)
}
