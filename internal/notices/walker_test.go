package notices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeListing serves pages of numbered records out of a fixed feed of
// total records, with an optional failure at a given offset.
func fakeListing(t *testing.T, total int, failAt int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		if failAt >= 0 && offset >= failAt {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		page := Page{Pagination: Pagination{Offset: offset, Limit: limit, Total: total}}
		for i := offset; i < total && i < offset+limit; i++ {
			page.Notices = append(page.Notices, RawNotice{
				NoticeID:    fmt.Sprintf("n-%d", i),
				Title:       fmt.Sprintf("Notice %d", i),
				Description: "Procurement of services.",
			})
		}
		page.Pagination.HasMore = offset+len(page.Notices) < total

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
}

func TestWalkerExhaustsListing(t *testing.T) {
	srv := fakeListing(t, 5, -1)
	defer srv.Close()

	w := NewWalker(testClient(srv.URL), WalkOptions{PageSize: 2})

	var records int
	for {
		page, err := w.Next(context.Background())
		require.NoError(t, err)
		if page == nil {
			break
		}
		records += len(page.Notices)
	}

	require.Equal(t, 5, records)
	require.Equal(t, 3, w.Pages())
	require.Equal(t, 5, w.Cursor().Offset)

	// the walk is finite and does not restart
	page, err := w.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, page)
}

func TestWalkerMaxPagesBound(t *testing.T) {
	srv := fakeListing(t, 100, -1)
	defer srv.Close()

	w := NewWalker(testClient(srv.URL), WalkOptions{PageSize: 10, MaxPages: 3})

	var pages int
	for {
		page, err := w.Next(context.Background())
		require.NoError(t, err)
		if page == nil {
			break
		}
		pages++
	}

	require.Equal(t, 3, pages)
	require.Equal(t, 30, w.Cursor().Offset)
}

func TestWalkerSurfacesCursorOnFailure(t *testing.T) {
	srv := fakeListing(t, 10, 4)
	defer srv.Close()

	w := NewWalker(testClient(srv.URL), WalkOptions{PageSize: 2})

	// two good pages
	for i := 0; i < 2; i++ {
		page, err := w.Next(context.Background())
		require.NoError(t, err)
		require.Len(t, page.Notices, 2)
	}

	_, err := w.Next(context.Background())
	var walkErr *WalkError
	require.ErrorAs(t, err, &walkErr)
	require.Equal(t, 4, walkErr.Cursor.Offset)
	require.Equal(t, 2, walkErr.Pages)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)

	// a failed walk stays terminated
	page, err := w.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, page)
}
