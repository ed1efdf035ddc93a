// Package fetcher drives one full fetch pass: walk the paginated notice
// listing, normalize each record, and upsert it into the corpus. Pages
// are processed strictly in order; every notice of a page is written
// before the next page is requested, so an interrupt between pages never
// leaves a partially applied page behind.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
	"github.com/Circlebit/procurement-analysis/internal/index"
	"github.com/Circlebit/procurement-analysis/internal/normalize"
	"github.com/Circlebit/procurement-analysis/internal/notices"
)

// Stats summarizes one fetch pass, complete or truncated.
type Stats struct {
	Pages    int
	Fetched  int
	Inserted int
	Skipped  int
	Replaced int
	Rejected int
	// LastCursor is the position after the last fully processed page.
	LastCursor notices.Cursor
	Duration   time.Duration
}

// Fetcher runs fetch passes against one client, corpus, and (optionally)
// search index. Construct one per run; the embedded walker is not
// restartable.
type Fetcher struct {
	client *notices.Client
	store  *corpus.Store
	idx    *index.Index // nil disables indexing
	walk   notices.WalkOptions
	log    *slog.Logger
}

// New creates a fetcher. idx may be nil when no search index should be
// maintained.
func New(client *notices.Client, store *corpus.Store, idx *index.Index, walk notices.WalkOptions) *Fetcher {
	return &Fetcher{
		client: client,
		store:  store,
		idx:    idx,
		walk:   walk,
		log:    slog.Default().With("component", "fetcher"),
	}
}

// Run executes one fetch pass. Schema rejections are counted and logged
// but never fatal. A walk abort returns the stats accumulated so far
// alongside the *notices.WalkError, so everything written up to the
// failure stays reported and persisted.
func (f *Fetcher) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	walker := notices.NewWalker(f.client, f.walk)

	for {
		page, err := walker.Next(ctx)
		if err != nil {
			stats.LastCursor = walker.Cursor()
			stats.Duration = time.Since(start)
			return stats, err
		}
		if page == nil {
			break
		}

		for i := range page.Notices {
			if err := f.ingest(&page.Notices[i], stats); err != nil {
				stats.Duration = time.Since(start)
				return stats, err
			}
		}

		stats.Pages++
		stats.LastCursor = walker.Cursor()
	}

	stats.Duration = time.Since(start)
	f.log.Info("fetch pass complete",
		"pages", stats.Pages,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"replaced", stats.Replaced,
		"rejected", stats.Rejected,
		"duration", stats.Duration)
	return stats, nil
}

func (f *Fetcher) ingest(raw *notices.RawNotice, stats *Stats) error {
	stats.Fetched++

	notice, err := normalize.Notice(raw, time.Now().UTC())
	if err != nil {
		var schemaErr *normalize.SchemaError
		if errors.As(err, &schemaErr) {
			stats.Rejected++
			f.log.Warn("record rejected", "error", schemaErr)
			return nil
		}
		return err
	}

	outcome, err := f.store.Upsert(notice)
	if err != nil {
		return err
	}

	switch outcome {
	case corpus.Inserted:
		stats.Inserted++
	case corpus.Skipped:
		stats.Skipped++
	case corpus.Replaced:
		stats.Replaced++
	}

	if f.idx != nil && outcome != corpus.Skipped {
		if err := f.idx.IndexNotice(notice); err != nil {
			return err
		}
	}
	return nil
}
