package notices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:      url,
		Token:        "test-token",
		Timeout:      5 * time.Second,
		RetryCount:   3,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
}

func TestFetchPageRetriesTransient(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"notices": [{"noticeId": "n-1", "title": "Road works", "description": "Repaving."}],
			"pagination": {"offset": 0, "limit": 100, "total": 1, "hasMore": false}
		}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).FetchPage(context.Background(), PageParams{Limit: 100})
	require.NoError(t, err)
	require.Equal(t, int32(3), attempts.Load())
	require.Len(t, page.Notices, 1)
	require.Equal(t, "n-1", page.Notices[0].NoticeID)
	require.False(t, page.Pagination.HasMore)
}

func TestFetchPageTransportErrorAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), PageParams{Limit: 100})
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	// initial attempt plus the configured retries
	require.Equal(t, int32(4), attempts.Load())
}

func TestFetchPageClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), PageParams{Limit: 100})
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
	require.Equal(t, int32(1), attempts.Load())

	var transportErr *TransportError
	require.False(t, errors.As(err, &transportErr))
}

func TestFetchPageSendsParamsAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/notices", r.URL.Path)
		require.Equal(t, "2024-12", r.URL.Query().Get("pubMonth"))
		require.Equal(t, "40", r.URL.Query().Get("offset"))
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"notices": [], "pagination": {"offset": 40, "limit": 20, "total": 40, "hasMore": false}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), PageParams{
		Month:  "2024-12",
		Offset: 40,
		Limit:  20,
	})
	require.NoError(t, err)
}
