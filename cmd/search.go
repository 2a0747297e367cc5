package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okibe/mangasrc/internal/source"
)

var (
	flagSearchPages   int
	flagSearchFilters []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the selected source",
	Long: `Search the selected source.

Filters are passed as --filter id=value. Multi-value filters take one flag per
option; prefix a value with '-' to exclude results carrying that genre:

  mangasrc search "solo" --filter genres=action --filter genres=-harem`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		filters, err := parseFilters(flagSearchFilters)
		if err != nil {
			return err
		}

		ctx := context.Background()

		var cur *source.PageCursor
		total := 0

		for page := 1; page <= flagSearchPages; page++ {
			results, next, err := s.adapter.Search(ctx, args[0], filters, cur)
			if err != nil {
				return explain(err)
			}

			for _, r := range results {
				total++
				fmt.Printf("%3d) %-40s  %s\n", total, r.Title, r.ID)
			}

			if next == nil {
				break
			}
			cur = next
		}

		if total == 0 {
			fmt.Println("No results.")
			return nil
		}

		fmt.Printf("\n%d results\n", total)
		return nil
	},
}

// parseFilters turns repeated id=value flags into the adapter's filter map.
// Repeating an id builds a multi-select; a leading '-' marks exclusion.
func parseFilters(raw []string) (map[string]source.FilterValue, error) {
	filters := map[string]source.FilterValue{}

	for _, f := range raw {
		id, value, ok := strings.Cut(f, "=")
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("bad filter %q, want id=value", f)
		}

		state := source.FilterIncluded
		if strings.HasPrefix(value, "-") {
			state = source.FilterExcluded
			value = value[1:]
		}

		fv, seen := filters[id]
		if !seen && state == source.FilterIncluded && fv.Options == nil {
			// first plain value: keep it single-select until the id repeats
			filters[id] = source.FilterValue{Option: value}
			continue
		}

		if fv.Options == nil {
			fv.Options = map[string]source.FilterState{}
			if fv.Option != "" {
				fv.Options[fv.Option] = source.FilterIncluded
				fv.Option = ""
			}
		}
		fv.Options[value] = state
		filters[id] = fv
	}

	return filters, nil
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchPages, "pages", 1, "number of pages to walk")
	searchCmd.Flags().StringArrayVar(&flagSearchFilters, "filter", nil, "filter as id=value, repeatable; prefix value with '-' to exclude")
	rootCmd.AddCommand(searchCmd)
}
