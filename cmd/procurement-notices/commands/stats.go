package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
	"github.com/Circlebit/procurement-analysis/internal/index"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Shows corpus and search index counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := corpus.Open(cfg.DBPath(), cfg.Corpus.OnConflict)
		if err != nil {
			return fmt.Errorf("open corpus: %w", err)
		}
		defer store.Close()

		idx, err := index.Open(cfg.IndexPath())
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		defer idx.Close()

		corpusCount, err := store.Count()
		if err != nil {
			return err
		}
		indexCount, err := idx.Count()
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Store", "Notices"})
		t.AppendRow(table.Row{"corpus", corpusCount})
		t.AppendRow(table.Row{"index", indexCount})
		t.Render()
		return nil
	},
}
