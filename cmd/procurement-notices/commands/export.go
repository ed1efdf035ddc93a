package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
)

var (
	exportFormat *string
	exportOut    *string
)

func init() {
	exportFormat = exportCmd.Flags().String("format", "jsonl", "Output format: jsonl or csv.")
	exportOut = exportCmd.Flags().String("out", "", "Output file. Empty writes to stdout.")
	rootCmd.AddCommand(exportCmd)
}

// exportedNotice is the record shape the downstream modeling step reads.
type exportedNotice struct {
	ID          string            `json:"id"`
	PublishedAt string            `json:"published_at,omitempty"`
	Title       string            `json:"title"`
	BodyText    string            `json:"body_text"`
	Metadata    map[string]string `json:"metadata"`
}

var exportCmd = &cobra.Command{
	Use:   "export [--format jsonl|csv] [--out <path>]",
	Short: "Exports the corpus for the statistical modeling step.",
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

		all, err := store.List()
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if *exportOut != "" {
			f, err := os.Create(*exportOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		switch *exportFormat {
		case "jsonl":
			return writeJSONL(out, all)
		case "csv":
			return writeCSV(out, all)
		default:
			return fmt.Errorf("unknown format %q, want jsonl or csv", *exportFormat)
		}
	},
}

func exported(n *corpus.Notice) exportedNotice {
	e := exportedNotice{
		ID:       n.ID,
		Title:    n.Title,
		BodyText: n.BodyText,
		Metadata: n.Metadata,
	}
	if !n.PublishedAt.IsZero() {
		e.PublishedAt = n.PublishedAt.Format(time.RFC3339)
	}
	return e
}

func writeJSONL(out io.Writer, all []*corpus.Notice) error {
	enc := json.NewEncoder(out)
	for _, n := range all {
		if err := enc.Encode(exported(n)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(out io.Writer, all []*corpus.Notice) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"id", "published_at", "title", "body_text", "metadata"}); err != nil {
		return err
	}
	for _, n := range all {
		e := exported(n)
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		row := []string{e.ID, e.PublishedAt, e.Title, e.BodyText, string(metadata)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
