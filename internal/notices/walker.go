package notices

import (
	"context"
	"fmt"
	"log/slog"
)

// WalkError reports a pagination walk that stopped before the API was
// exhausted. Cursor is the position after the last page that was fetched
// successfully, so the operator can resume from there.
type WalkError struct {
	Cursor Cursor
	Pages  int
	Err    error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk aborted after %d pages at offset %d: %v", e.Pages, e.Cursor.Offset, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// WalkOptions configures one pagination walk.
type WalkOptions struct {
	Month    string
	PageSize int
	// MaxPages bounds the walk in case the API never reports
	// exhaustion. 0 means the default bound, not unlimited.
	MaxPages int
}

// Walker iterates over the pages of the notices listing. It is finite
// and non-restartable; construct a fresh one per run.
type Walker struct {
	client *Client
	opts   WalkOptions
	log    *slog.Logger

	cursor Cursor
	pages  int
	done   bool
}

// NewWalker creates a walker starting at the beginning of the listing.
func NewWalker(client *Client, opts WalkOptions) *Walker {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1000
	}
	return &Walker{
		client: client,
		opts:   opts,
		log:    slog.Default().With("component", "walker"),
	}
}

// Next fetches the next page. It returns (nil, nil) once the listing is
// exhausted. A fetch failure ends the walk permanently and returns a
// *WalkError wrapping the cause.
func (w *Walker) Next(ctx context.Context) (*Page, error) {
	if w.done {
		return nil, nil
	}
	if w.pages >= w.opts.MaxPages {
		w.log.Warn("page bound reached before API reported exhaustion",
			"max_pages", w.opts.MaxPages, "offset", w.cursor.Offset)
		w.done = true
		return nil, nil
	}

	page, err := w.client.FetchPage(ctx, PageParams{
		Month:  w.opts.Month,
		Offset: w.cursor.Offset,
		Limit:  w.opts.PageSize,
	})
	if err != nil {
		w.done = true
		return nil, &WalkError{Cursor: w.cursor, Pages: w.pages, Err: err}
	}

	w.pages++
	w.cursor.Offset += len(page.Notices)
	if !page.Pagination.HasMore || len(page.Notices) == 0 {
		w.done = true
	}

	w.log.Debug("fetched page", "page", w.pages, "records", len(page.Notices), "has_more", page.Pagination.HasMore)
	return page, nil
}

// Cursor returns the position after the last successfully fetched page.
func (w *Walker) Cursor() Cursor {
	return w.cursor
}

// Pages returns how many pages have been fetched so far.
func (w *Walker) Pages() int {
	return w.pages
}
