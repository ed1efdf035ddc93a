// Package normalize maps provider records onto the canonical notice
// schema, rejecting records that cannot be represented instead of
// coercing them.
package normalize

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
	"github.com/Circlebit/procurement-analysis/internal/notices"
)

// SchemaError rejects one malformed provider record. The pipeline counts
// and reports these; it never drops a record silently.
type SchemaError struct {
	NoticeID string // may be empty when the id itself is missing
	Field    string
	Reason   string
}

func (e *SchemaError) Error() string {
	if e.NoticeID == "" {
		return fmt.Sprintf("record rejected: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("record %s rejected: %s: %s", e.NoticeID, e.Field, e.Reason)
}

// Notice converts a raw provider record into a canonical notice.
// Records missing an id or body text are rejected with *SchemaError.
func Notice(raw *notices.RawNotice, fetchedAt time.Time) (*corpus.Notice, error) {
	id := strings.TrimSpace(raw.NoticeID)
	if id == "" {
		return nil, &SchemaError{Field: "noticeId", Reason: "missing"}
	}

	body := Text(raw.Description)
	if body == "" {
		return nil, &SchemaError{NoticeID: id, Field: "description", Reason: "missing"}
	}

	published, err := parsePublished(raw.IssueDate, raw.IssueTime)
	if err != nil {
		return nil, &SchemaError{NoticeID: id, Field: "issueDate", Reason: err.Error()}
	}

	n := &corpus.Notice{
		ID:          id,
		PublishedAt: published,
		Title:       Text(raw.Title),
		BodyText:    body,
		Metadata:    metadata(raw),
		FetchedAt:   fetchedAt,
	}
	return n, nil
}

// Text cleans a provider text field: HTML entities decoded, control
// characters stripped, whitespace runs collapsed to single spaces.
func Text(s string) string {
	s = html.UnescapeString(s)

	var b strings.Builder
	b.Grow(len(s))
	space := true // leading whitespace is dropped
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}

	return strings.TrimSpace(b.String())
}

// parsePublished combines the provider's issueDate and issueTime. The
// date is optional; a present but unparseable date is a schema problem,
// not something to guess around.
func parsePublished(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, nil
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", date)
	}

	if clock == "" {
		return day.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05Z07:00", date+" "+clock)
	if err != nil {
		// Date alone is good enough; a malformed time of day is not
		// worth rejecting the record over.
		return day.UTC(), nil
	}
	return t.UTC(), nil
}

func metadata(raw *notices.RawNotice) map[string]string {
	m := map[string]string{}
	put := func(key, value string) {
		if v := Text(value); v != "" {
			m[key] = v
		}
	}

	put("notice_type", raw.NoticeType)
	put("procurement_type", raw.ProcurementType)
	put("cpv_code", raw.CPVCode)
	if raw.Buyer != nil {
		put("buyer_name", raw.Buyer.Name)
		put("buyer_city", raw.Buyer.City)
		put("buyer_country", raw.Buyer.CountryCode)
	}
	if raw.TotalValue != nil {
		m["value_amount"] = strconv.FormatFloat(raw.TotalValue.Amount, 'f', -1, 64)
		put("value_currency", raw.TotalValue.Currency)
	}

	return m
}
