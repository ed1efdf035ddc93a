package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <notice-id>",
	Short: "Prints one stored notice.",
	Args:  cobra.ExactArgs(1),
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

		notice, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if notice == nil {
			return fmt.Errorf("notice not found: %s", args[0])
		}

		fmt.Printf("ID:        %s\n", notice.ID)
		if !notice.PublishedAt.IsZero() {
			fmt.Printf("Published: %s\n", notice.PublishedAt.Format(time.RFC3339))
		}
		fmt.Printf("Title:     %s\n", notice.Title)

		keys := make([]string, 0, len(notice.Metadata))
		for k := range notice.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %s\n", k, notice.Metadata[k])
		}

		fmt.Println()
		fmt.Println(notice.BodyText)
		return nil
	},
}
