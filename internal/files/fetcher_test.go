package files

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("returns body and length", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/raw/upload/My%20Paper.pdf", r.URL.EscapedPath())
			w.Write([]byte("%PDF-1.7 body"))
		}))
		defer srv.Close()

		f := NewHTTPFetcher(nil)
		got, err := f.Fetch(context.Background(), srv.URL+"/raw/upload/My Paper.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7 body"), got.Data)
		assert.Equal(t, int64(13), got.ContentLength)
	})

	t.Run("stray percent and query spaces reach the server encoded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/raw/upload/100%25%20Bees.pdf", r.URL.EscapedPath())
			assert.Equal(t, "v=a%20b", r.URL.RawQuery)
			assert.Equal(t, "a b", r.URL.Query().Get("v"))
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		got, err := NewHTTPFetcher(nil).Fetch(context.Background(), srv.URL+"/raw/upload/100% Bees.pdf?v=a b")
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), got.Data)
	})

	t.Run("non-2xx is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(nil).Fetch(context.Background(), srv.URL+"/missing.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("single attempt by default", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(nil).Fetch(context.Background(), srv.URL+"/a.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("retry is capped at one", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		f := NewHTTPFetcher(&HTTPFetcherOptions{RetryMax: 5})
		got, err := f.Fetch(context.Background(), srv.URL+"/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), got.Data)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("timeout is a fetch failure", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		f := NewHTTPFetcher(&HTTPFetcherOptions{Timeout: 50 * time.Millisecond})
		start := time.Now()
		_, err := f.Fetch(context.Background(), srv.URL+"/slow.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(make([]byte, 64))
		}))
		defer srv.Close()

		f := NewHTTPFetcher(&HTTPFetcherOptions{MaxBytes: 32})
		_, err := f.Fetch(context.Background(), srv.URL+"/big.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPFetcher(nil).Fetch(context.Background(), url+"/a.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
	})
}

func TestSchemeFetcher(t *testing.T) {
	t.Run("s3 without configuration fails", func(t *testing.T) {
		f := &SchemeFetcher{HTTP: NewHTTPFetcher(nil)}
		_, err := f.Fetch(context.Background(), "s3://bucket/key.pdf")
		assert.ErrorIs(t, err, ErrRemoteFetchFailed)
	})

	t.Run("http goes to the http fetcher", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("docx"))
		}))
		defer srv.Close()

		f := &SchemeFetcher{HTTP: NewHTTPFetcher(nil)}
		got, err := f.Fetch(context.Background(), srv.URL+"/a.docx")
		require.NoError(t, err)
		assert.Equal(t, []byte("docx"), got.Data)
	})
}

func TestParseS3URL(t *testing.T) {
	obj, err := ParseS3URL("s3://journal-files/2024/paper one.pdf")
	require.NoError(t, err)
	assert.Equal(t, "journal-files", obj.Bucket)
	assert.Equal(t, "2024/paper one.pdf", obj.Key)

	_, err = ParseS3URL("s3://bucket-only")
	assert.Error(t, err)
	_, err = ParseS3URL("https://bucket/key")
	assert.Error(t, err)

	assert.True(t, IsS3URL("S3://bucket/key"))
	assert.False(t, IsS3URL("https://s3.amazonaws.com/bucket/key"))
}
