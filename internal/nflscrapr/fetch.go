package nflscrapr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3GetAPI is the slice of the S3 client the fetcher needs.
type S3GetAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher reads a table from an http(s) URL, an s3://bucket/key location, a
// file:// URL or a local path.
type Fetcher struct {
	HTTP      *http.Client
	S3        S3GetAPI // nil disables s3:// locations
	UserAgent string
}

const defaultUserAgent = "fantasy-market-share/1.0"

// Fetch returns the raw bytes behind location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.httpGet(ctx, location)
	case strings.HasPrefix(location, "s3://"):
		return f.s3Get(ctx, location)
	case strings.HasPrefix(location, "file://"):
		return os.ReadFile(strings.TrimPrefix(location, "file://"))
	default:
		return os.ReadFile(location)
	}
}

func (f *Fetcher) httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	cl := f.HTTP
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: status %d body=%q", url, resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func (f *Fetcher) s3Get(ctx context.Context, location string) ([]byte, error) {
	if f.S3 == nil {
		return nil, fmt.Errorf("fetch %s: no s3 client configured", location)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("fetch %s: want s3://bucket/key", location)
	}
	out, err := f.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
