package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts report artifacts under Prefix in Bucket.
type Uploader struct {
	Client S3PutAPI
	Bucket string
	Prefix string
}

var contentTypes = map[string]string{
	".csv":     "text/csv",
	".svg":     "image/svg+xml",
	".parquet": "application/vnd.apache.parquet",
}

// Key joins Prefix and rel with slashes.
func (u *Uploader) Key(rel string) string {
	return path.Join(u.Prefix, filepath.ToSlash(rel))
}

// Put uploads body under Key(rel) and returns the full key.
func (u *Uploader) Put(ctx context.Context, rel string, body []byte) (string, error) {
	key := u.Key(rel)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if ct, ok := contentTypes[path.Ext(key)]; ok {
		in.ContentType = aws.String(ct)
	}
	if _, err := u.Client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", u.Bucket, key, err)
	}
	return key, nil
}

// PutFile uploads the local file at p under Key(rel).
func (u *Uploader) PutFile(ctx context.Context, rel, p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return u.Put(ctx, rel, b)
}
