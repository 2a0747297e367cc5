package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/source"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <manga-id> <chapter-id>",
	Short: "List a chapter's page image URLs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		pages, err := s.adapter.Pages(context.Background(), args[0], args[1])
		if errors.Is(err, source.ErrNoContent) {
			return fmt.Errorf("%w\nThe chapter may be paywalled or the site layout changed", err)
		}
		if err != nil {
			return explain(err)
		}

		for i, u := range pages.Pages {
			fmt.Printf("%3d  %s\n", i+1, u)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
