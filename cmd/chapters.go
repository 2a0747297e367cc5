package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/chapters"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters <manga-id>",
	Short: "List a manga's chapters, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		records, err := s.adapter.Chapters(context.Background(), args[0])
		if err != nil {
			return explain(err)
		}

		if len(records) == 0 {
			fmt.Println("No chapters found.")
			return nil
		}

		for i, ch := range chapters.Wrap(records) {
			line := fmt.Sprintf("%3d) Ch.%-7s %s", i+1, ch.Label(), ch.Title)
			if !ch.PublishedAt.IsZero() {
				line += "  " + ch.PublishedAt.Format("2006-01-02")
			}
			fmt.Println(line)
		}

		fmt.Printf("\n%d chapters\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
}
