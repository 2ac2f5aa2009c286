package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultFetchTimeout  = 30 * time.Second
	DefaultFetchMaxBytes = 100 << 20
	maxFetchRetries      = 1
)

// Fetched is the body of a completed remote fetch.
type Fetched struct {
	Data          []byte
	ContentLength int64
}

// Fetcher retrieves a remote document as opaque bytes.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Fetched, error)
}

// HTTPFetcherOptions configures an HTTPFetcher.
type HTTPFetcherOptions struct {
	// Timeout bounds the whole fetch, retry and body read included. Defaults to 30s.
	Timeout time.Duration
	// RetryMax is clamped to [0, 1]. Zero means a single attempt.
	RetryMax int
	// MaxBytes caps the accepted body size. Defaults to 100 MiB.
	MaxBytes int64
	// HTTPClient overrides the underlying client; mainly for tests.
	HTTPClient *http.Client
}

// HTTPFetcher downloads documents over HTTP(S).
type HTTPFetcher struct {
	client   *retryablehttp.Client
	timeout  time.Duration
	maxBytes int64
}

// retryLogger bridges retryablehttp's leveled logger onto zerolog.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logKV(log.Error(), keysAndValues).Msg("fetcher: " + msg)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logKV(log.Debug(), keysAndValues).Msg("fetcher: " + msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logKV(log.Trace(), keysAndValues).Msg("fetcher: " + msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logKV(log.Warn(), keysAndValues).Msg("fetcher: " + msg)
}

func logKV(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keysAndValues[i+1])
	}
	return e
}

// NewHTTPFetcher creates an HTTPFetcher. A nil options value uses the defaults.
func NewHTTPFetcher(options *HTTPFetcherOptions) *HTTPFetcher {
	if options == nil {
		options = &HTTPFetcherOptions{}
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultFetchMaxBytes
	}
	retryMax := options.RetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	if retryMax > maxFetchRetries {
		retryMax = maxFetchRetries
	}

	client := retryablehttp.NewClient()
	if options.HTTPClient != nil {
		client.HTTPClient = options.HTTPClient
	}
	client.RetryMax = retryMax
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.Logger = retryLogger{}
	// Hand the last response back instead of a generic "giving up" error so the
	// status code ends up in the fetch error.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPFetcher{
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

// Fetch performs a GET against rawURL and returns the full body.
// Every failure wraps ErrRemoteFetchFailed.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	encoded, err := EncodeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrRemoteFetchFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetchFailed, redactURL(encoded), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteFetchFailed, redactURL(encoded), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrRemoteFetchFailed, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrRemoteFetchFailed, f.maxBytes)
	}

	log.Debug().Str("url", redactURL(encoded)).Int("bytes", len(data)).Dur("took", time.Since(started)).Msg("fetcher: remote fetch complete")
	return &Fetched{Data: data, ContentLength: int64(len(data))}, nil
}

// redactURL drops the query string, which may carry signatures.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

// SchemeFetcher routes fetches by URL scheme: s3:// goes to the S3 fetcher,
// everything else to HTTP.
type SchemeFetcher struct {
	HTTP Fetcher
	S3   *S3Fetcher
}

// Fetch dispatches rawURL to the matching fetcher.
func (f *SchemeFetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	if IsS3URL(rawURL) {
		if f.S3 == nil {
			return nil, fmt.Errorf("%w: s3 storage is not configured", ErrRemoteFetchFailed)
		}
		return f.S3.Fetch(ctx, rawURL)
	}
	if f.HTTP == nil {
		return nil, fmt.Errorf("%w: no http fetcher configured", ErrRemoteFetchFailed)
	}
	return f.HTTP.Fetch(ctx, rawURL)
}
