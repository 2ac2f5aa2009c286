package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const DefaultPresignTTL = 15 * time.Minute

// S3Object identifies an object addressed by an s3://bucket/key URL.
type S3Object struct {
	Bucket string
	Key    string
}

// IsS3URL reports whether raw uses the s3:// scheme.
func IsS3URL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "s3://")
}

// ParseS3URL splits an s3://bucket/key URL.
func ParseS3URL(raw string) (S3Object, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return S3Object{}, err
	}
	if !strings.EqualFold(u.Scheme, "s3") {
		return S3Object{}, fmt.Errorf("not an s3 url: %q", raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return S3Object{}, fmt.Errorf("s3 url %q needs both bucket and key", raw)
	}
	return S3Object{Bucket: u.Host, Key: key}, nil
}

// S3FetcherOptions configures an S3Fetcher.
type S3FetcherOptions struct {
	Region     string
	Timeout    time.Duration
	MaxBytes   int64
	PresignTTL time.Duration
}

// S3Fetcher reads documents stored as s3:// objects and presigns GET URLs for
// the redirect endpoints.
type S3Fetcher struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	timeout    time.Duration
	maxBytes   int64
	presignTTL time.Duration
}

// NewS3Fetcher loads the default AWS credential chain for the given region.
func NewS3Fetcher(ctx context.Context, options *S3FetcherOptions) (*S3Fetcher, error) {
	if options == nil || options.Region == "" {
		return nil, fmt.Errorf("s3 fetcher requires a region")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(options.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	f := &S3Fetcher{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		timeout:    options.Timeout,
		maxBytes:   options.MaxBytes,
		presignTTL: options.PresignTTL,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultFetchTimeout
	}
	if f.maxBytes <= 0 {
		f.maxBytes = DefaultFetchMaxBytes
	}
	if f.presignTTL <= 0 {
		f.presignTTL = DefaultPresignTTL
	}
	return f, nil
}

// Fetch downloads the object named by rawURL.
func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	obj, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 get %s/%s: %v", ErrRemoteFetchFailed, obj.Bucket, obj.Key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if out.ContentLength != nil && *out.ContentLength > 0 && *out.ContentLength <= f.maxBytes {
		buf.Grow(int(*out.ContentLength))
	}
	if _, err := io.Copy(&buf, io.LimitReader(out.Body, f.maxBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: reading s3 body: %v", ErrRemoteFetchFailed, err)
	}
	if int64(buf.Len()) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrRemoteFetchFailed, f.maxBytes)
	}

	log.Debug().Str("bucket", obj.Bucket).Str("key", obj.Key).Int("bytes", buf.Len()).Msg("fetcher: s3 fetch complete")
	return &Fetched{Data: buf.Bytes(), ContentLength: int64(buf.Len())}, nil
}

// PresignURL returns a time-limited HTTPS URL for rawURL that asks S3 to serve
// the object with the given Content-Type and Content-Disposition.
func (f *S3Fetcher) PresignURL(ctx context.Context, rawURL, contentType, disposition string) (string, error) {
	obj, err := ParseS3URL(rawURL)
	if err != nil {
		return "", err
	}
	req, err := f.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(obj.Bucket),
		Key:                        aws.String(obj.Key),
		ResponseContentType:        aws.String(contentType),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(f.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return req.URL, nil
}
