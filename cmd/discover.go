package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/source"
)

var flagDiscoverPages int

var discoverCmd = &cobra.Command{
	Use:   "discover [section]",
	Short: "Browse a discovery section (popular, updated, ...) of the selected source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		sectionID := s.cfg.Section
		if len(args) == 1 {
			sectionID = args[0]
		}

		ctx := context.Background()

		var cur *source.PageCursor
		total := 0

		for page := 1; page <= flagDiscoverPages; page++ {
			items, next, err := s.adapter.Discover(ctx, sectionID, cur)
			if err != nil {
				return explain(err)
			}

			if len(items) == 0 && page == 1 {
				fmt.Printf("Nothing found in section %q.\n", sectionID)
				listSections(s)
				return nil
			}

			for _, it := range items {
				total++
				line := fmt.Sprintf("%3d) %-40s  %s", total, it.Title, it.ID)
				if it.Subtitle != "" {
					line += "  (" + it.Subtitle + ")"
				}
				fmt.Println(line)
			}

			if next == nil {
				break
			}
			cur = next
		}

		fmt.Printf("\n%d titles from %q\n", total, sectionID)
		return nil
	},
}

func listSections(s *session) {
	fmt.Println("Available sections:")
	for id := range s.adapter.Profile().Sections {
		fmt.Printf("  %s\n", id)
	}
}

func init() {
	discoverCmd.Flags().IntVar(&flagDiscoverPages, "pages", 1, "number of pages to walk")
	rootCmd.AddCommand(discoverCmd)
}
