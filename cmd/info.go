package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <manga-id>",
	Short: "Show a manga's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		rec, err := s.adapter.Detail(context.Background(), args[0])
		if err != nil {
			return explain(err)
		}

		fmt.Println(rec.Title)
		if len(rec.AltTitles) > 0 {
			fmt.Printf("Also known as: %s\n", strings.Join(rec.AltTitles, "; "))
		}
		fmt.Printf("Status: %s\n", rec.Status)
		if rec.Rating > 0 {
			fmt.Printf("Rating: %.1f\n", rec.Rating)
		}
		if len(rec.Genres) > 0 {
			fmt.Printf("Genres: %s\n", strings.Join(rec.Genres, ", "))
		}
		if rec.ImageURL != "" {
			fmt.Printf("Cover:  %s\n", rec.ImageURL)
		}
		if rec.Synopsis != "" {
			fmt.Printf("\n%s\n", rec.Synopsis)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
