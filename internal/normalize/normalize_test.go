package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Circlebit/procurement-analysis/internal/notices"
)

func TestNoticeMapsAllFields(t *testing.T) {
	fetched := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	raw := &notices.RawNotice{
		NoticeID:        "2024-123456",
		IssueDate:       "2024-12-03",
		IssueTime:       "09:30:00+01:00",
		NoticeType:      "cn-standard",
		Title:           "Neubau  einer Br&uuml;cke",
		Description:     "Planung und Bau einer Fu&szlig;g&auml;ngerbr&uuml;cke.",
		Buyer:           &notices.Buyer{Name: "Stadt Kassel", City: "Kassel", CountryCode: "DE"},
		CPVCode:         "45221113",
		ProcurementType: "works",
		TotalValue:      &notices.Valuation{Amount: 1200000.5, Currency: "EUR"},
	}

	n, err := Notice(raw, fetched)
	require.NoError(t, err)

	require.Equal(t, "2024-123456", n.ID)
	require.Equal(t, "Neubau einer Brücke", n.Title)
	require.Equal(t, "Planung und Bau einer Fußgängerbrücke.", n.BodyText)
	require.Equal(t, time.Date(2024, 12, 3, 8, 30, 0, 0, time.UTC), n.PublishedAt)
	require.Equal(t, fetched, n.FetchedAt)

	require.Equal(t, map[string]string{
		"notice_type":      "cn-standard",
		"procurement_type": "works",
		"cpv_code":         "45221113",
		"buyer_name":       "Stadt Kassel",
		"buyer_city":       "Kassel",
		"buyer_country":    "DE",
		"value_amount":     "1200000.5",
		"value_currency":   "EUR",
	}, n.Metadata)
}

func TestNoticeRejections(t *testing.T) {
	cases := []struct {
		name  string
		raw   notices.RawNotice
		field string
	}{
		{
			name:  "missing id",
			raw:   notices.RawNotice{Description: "text"},
			field: "noticeId",
		},
		{
			name:  "blank id",
			raw:   notices.RawNotice{NoticeID: "   ", Description: "text"},
			field: "noticeId",
		},
		{
			name:  "missing body",
			raw:   notices.RawNotice{NoticeID: "n-1"},
			field: "description",
		},
		{
			name:  "whitespace-only body",
			raw:   notices.RawNotice{NoticeID: "n-1", Description: " \t\n "},
			field: "description",
		},
		{
			name:  "unparseable date",
			raw:   notices.RawNotice{NoticeID: "n-1", Description: "text", IssueDate: "03.12.2024"},
			field: "issueDate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Notice(&tc.raw, time.Now())
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.Equal(t, tc.field, schemaErr.Field)
		})
	}
}

func TestNoticeOptionalDate(t *testing.T) {
	n, err := Notice(&notices.RawNotice{NoticeID: "n-1", Description: "text"}, time.Now())
	require.NoError(t, err)
	require.True(t, n.PublishedAt.IsZero())

	n, err = Notice(&notices.RawNotice{
		NoticeID:    "n-2",
		Description: "text",
		IssueDate:   "2024-12-03",
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC), n.PublishedAt)

	// malformed time of day falls back to the date
	n, err = Notice(&notices.RawNotice{
		NoticeID:    "n-3",
		Description: "text",
		IssueDate:   "2024-12-03",
		IssueTime:   "morning",
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC), n.PublishedAt)
}

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"multi   space\tand\ttabs", "multi space and tabs"},
		{"line\nbreaks\r\neverywhere", "line breaks everywhere"},
		{"control\x00\x1bchars", "control chars"},
		{"entities &amp; umlauts: B&uuml;ro", "entities & umlauts: Büro"},
		{"", ""},
		{" \t\r\n ", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Text(tc.in), "input %q", tc.in)
	}
}
