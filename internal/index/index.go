package index

import (
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
)

// Index is a bleve full-text index over the notice corpus. It is a
// derived view: the SQLite corpus stays authoritative and the index can
// always be rebuilt from it.
type Index struct {
	index bleve.Index
}

// IndexedNotice is the shape of one notice inside the index.
type IndexedNotice struct {
	ID          string
	Title       string
	BodyText    string
	Buyer       string
	CPVCode     string
	PublishedAt time.Time
}

// Result is one search hit.
type Result struct {
	ID        string
	Title     string
	Buyer     string
	Score     float64
	Fragments map[string][]string
}

// Open opens or creates a bleve index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	titleMapping := bleve.NewTextFieldMapping()
	titleMapping.Analyzer = "en"

	bodyMapping := bleve.NewTextFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleMapping)
	docMapping.AddFieldMappingsAt("BodyText", bodyMapping)
	docMapping.AddFieldMappingsAt("Buyer", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("CPVCode", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexNotice adds or updates one notice in the index.
func (i *Index) IndexNotice(n *corpus.Notice) error {
	doc := &IndexedNotice{
		ID:          n.ID,
		Title:       n.Title,
		BodyText:    n.BodyText,
		Buyer:       n.Metadata["buyer_name"],
		CPVCode:     n.Metadata["cpv_code"],
		PublishedAt: n.PublishedAt,
	}
	return i.index.Index(n.ID, doc)
}

// Delete removes a notice from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Count returns the number of indexed notices.
func (i *Index) Count() (int, error) {
	count, err := i.index.DocCount()
	return int(count), err
}

// Search runs a query-string search (quotes, boolean operators, fuzzy ~)
// and returns hits with highlighted fragments.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Fields = []string{"Title", "Buyer"}

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []*Result
	for _, hit := range results.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if buyer, ok := hit.Fields["Buyer"].(string); ok {
			r.Buyer = buyer
		}
		hits = append(hits, r)
	}
	return hits, nil
}

// Rebuild re-indexes the whole corpus. progress may be nil.
func (i *Index) Rebuild(store *corpus.Store, progress func(current, total int)) error {
	all, err := store.List()
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}

	batch := i.index.NewBatch()
	for n, notice := range all {
		doc := &IndexedNotice{
			ID:          notice.ID,
			Title:       notice.Title,
			BodyText:    notice.BodyText,
			Buyer:       notice.Metadata["buyer_name"],
			CPVCode:     notice.Metadata["cpv_code"],
			PublishedAt: notice.PublishedAt,
		}
		if err := batch.Index(notice.ID, doc); err != nil {
			return fmt.Errorf("batch %s: %w", notice.ID, err)
		}

		if batch.Size() >= 100 {
			if err := i.index.Batch(batch); err != nil {
				return fmt.Errorf("flush batch: %w", err)
			}
			batch = i.index.NewBatch()
		}
		if progress != nil {
			progress(n+1, len(all))
		}
	}

	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("flush batch: %w", err)
		}
	}
	return nil
}
