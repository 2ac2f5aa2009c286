package journalfiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client is the main entry point for talking to the download service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delays     []time.Duration
}

// NewClient creates a new Client for the given server URL, e.g.
// "https://journal.example.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			// Redirect endpoints are inspected, not followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		delays: []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second},
	}
}

// doRequest performs a GET with retry logic.
// Retries up to 3 times with exponential backoff on 5xx responses or network errors.
func (c *Client) doRequest(ctx context.Context, path string) (*http.Response, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("journalfiles: failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) {
				lastErr = err
				continue
			}
			return nil, err
		}

		// 5xx responses are retryable (except on last attempt)
		if resp.StatusCode >= 500 && attempt < len(c.delays) {
			resp.Body.Close()
			lastErr = fmt.Errorf("journalfiles: server error %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, newAPIError(resp.StatusCode, bodyBytes)
		}

		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("journalfiles: request failed after retries: %w", lastErr)
	}
	return nil, fmt.Errorf("journalfiles: request failed after retries")
}

// DownloadJournal streams a journal document, proxied through the server, into w.
func (c *Client) DownloadJournal(ctx context.Context, id string, kind DocumentKind, w io.Writer) (*Download, error) {
	return c.download(ctx, "/api/journals/"+id+"/direct-download/"+string(kind), w)
}

// DownloadSubmission streams a submission document into w. The server falls
// back to its local copy when remote storage is unavailable.
func (c *Client) DownloadSubmission(ctx context.Context, id string, kind DocumentKind, w io.Writer) (*Download, error) {
	return c.download(ctx, "/api/submissions/"+id+"/download/"+string(kind), w)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) (*Download, error) {
	resp, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("journalfiles: failed to read file data: %w", err)
	}

	return &Download{
		Filename:    filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}

// JournalRedirectURL returns the storage URL the server redirects journal
// downloads to, without following it.
func (c *Client) JournalRedirectURL(ctx context.Context, id string, kind DocumentKind) (string, error) {
	resp, err := c.doRequest(ctx, "/api/journals/"+id+"/download/"+string(kind))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	if resp.StatusCode < 300 || location == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "expected a redirect"}
	}
	return location, nil
}

// FileInfo reports which document sources a record has.
func (c *Client) FileInfo(ctx context.Context, collection Collection, id string) (*RecordFiles, error) {
	resp, err := c.doRequest(ctx, "/api/"+string(collection)+"/"+id+"/files")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rf RecordFiles
	if err := json.NewDecoder(resp.Body).Decode(&rf); err != nil {
		return nil, fmt.Errorf("journalfiles: failed to decode file info: %w", err)
	}
	return &rf, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
