package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
	"github.com/Circlebit/procurement-analysis/internal/fetcher"
	"github.com/Circlebit/procurement-analysis/internal/index"
	"github.com/Circlebit/procurement-analysis/internal/notices"
)

var (
	fetchMonth    *string
	fetchMaxPages *int
	fetchNoIndex  *bool
)

func init() {
	fetchMonth = fetchCmd.Flags().String("month", "", "Publication month to fetch (YYYY-MM). Overrides the config; empty fetches the full feed.")
	fetchMaxPages = fetchCmd.Flags().Int("max-pages", 0, "Page bound for this run. 0 uses the config value.")
	fetchNoIndex = fetchCmd.Flags().Bool("no-index", false, "Skip maintaining the search index during the fetch.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--month YYYY-MM]",
	Short: "Runs one full fetch pass against the notices API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if *fetchMonth != "" {
			cfg.Fetch.Month = *fetchMonth
		}
		if *fetchMaxPages > 0 {
			cfg.Fetch.MaxPages = *fetchMaxPages
		}

		if err := os.MkdirAll(cfg.Corpus.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}

		store, err := corpus.Open(cfg.DBPath(), cfg.Corpus.OnConflict)
		if err != nil {
			return fmt.Errorf("open corpus: %w", err)
		}
		defer store.Close()

		var idx *index.Index
		if !*fetchNoIndex {
			idx, err = index.Open(cfg.IndexPath())
			if err != nil {
				return fmt.Errorf("open search index: %w", err)
			}
			defer idx.Close()
		}

		client := notices.NewClient(notices.ClientOptions{
			BaseURL:      cfg.API.BaseURL,
			Token:        cfg.API.Token,
			Timeout:      time.Duration(cfg.API.Timeout),
			RetryCount:   cfg.API.RetryCount,
			RetryWaitMin: time.Duration(cfg.API.RetryWaitMin),
			RetryWaitMax: time.Duration(cfg.API.RetryWaitMax),
		})

		f := fetcher.New(client, store, idx, notices.WalkOptions{
			Month:    cfg.Fetch.Month,
			PageSize: cfg.Fetch.PageSize,
			MaxPages: cfg.Fetch.MaxPages,
		})

		stats, runErr := f.Run(cmd.Context())
		printStats(stats)

		if runErr != nil {
			var walkErr *notices.WalkError
			if errors.As(runErr, &walkErr) {
				return fmt.Errorf("fetch aborted at offset %d; corpus retains everything written so far: %w",
					walkErr.Cursor.Offset, walkErr.Err)
			}
			return runErr
		}
		return nil
	},
}

func printStats(stats *fetcher.Stats) {
	t := newTable()
	t.AppendHeader(table.Row{"Pages", "Fetched", "Inserted", "Skipped", "Replaced", "Rejected", "Duration"})
	t.AppendRow(table.Row{
		stats.Pages, stats.Fetched, stats.Inserted, stats.Skipped,
		stats.Replaced, stats.Rejected, stats.Duration.Round(time.Millisecond),
	})
	t.Render()
}
