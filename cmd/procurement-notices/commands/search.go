package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/index"
)

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().Int("limit", 10, "Maximum number of results.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches the notice corpus by keyword. Supports quoted phrases and fuzzy~ terms.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		idx, err := index.Open(cfg.IndexPath())
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		defer idx.Close()

		query := strings.Join(args, " ")
		hits, err := idx.Search(query, *searchLimit)
		if err != nil {
			return err
		}

		if len(hits) == 0 {
			fmt.Println("No results found")
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "ID", "Title", "Buyer", "Score"})
		for i, hit := range hits {
			t.AppendRow(table.Row{i + 1, hit.ID, hit.Title, hit.Buyer, fmt.Sprintf("%.3f", hit.Score)})
		}
		t.Render()

		for _, hit := range hits {
			if fragments, ok := hit.Fragments["BodyText"]; ok && len(fragments) > 0 {
				fmt.Printf("%s: %s\n", hit.ID, fragments[0])
			}
		}
		return nil
	},
}
