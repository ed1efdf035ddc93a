package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
	"github.com/Circlebit/procurement-analysis/internal/index"
)

func init() {
	rootCmd.AddCommand(reindexCmd)
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuilds the search index from the corpus.",
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

		progress := func(current, total int) {
			if current%100 == 0 || current == total {
				fmt.Printf("\rIndexing: %d/%d", current, total)
			}
		}
		if err := idx.Rebuild(store, progress); err != nil {
			return err
		}
		fmt.Println()

		count, err := idx.Count()
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d notices\n", count)
		return nil
	},
}
