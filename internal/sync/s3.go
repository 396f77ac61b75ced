package sync

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the subset of *s3.Client used by S3Destination.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads the snapshot to an S3-compatible bucket. The
// configured key always holds the latest export; with archiving enabled a
// dated copy is also written next to it.
type S3Destination struct {
	client  objectPutter
	bucket  string
	key     string
	archive bool
	now     func() time.Time
}

// S3Config describes the bucket an S3Destination writes to.
type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
	// Archive writes a timestamped copy alongside Key on every sync.
	Archive bool
}

// NewS3Destination creates an S3 destination. If Endpoint is set,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, c S3Config) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if c.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3Destination(s3.NewFromConfig(cfg, s3opts...), c), nil
}

func newS3Destination(client objectPutter, c S3Config) *S3Destination {
	return &S3Destination{
		client:  client,
		bucket:  c.Bucket,
		key:     c.Key,
		archive: c.Archive,
		now:     time.Now,
	}
}

// String describes the destination for logs.
func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.key
}

// Write uploads data under the configured key, and a dated archive copy
// when enabled.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	if err := d.put(ctx, d.key, data); err != nil {
		return err
	}
	if d.archive {
		if err := d.put(ctx, d.archiveKey(), data); err != nil {
			return err
		}
	}
	return nil
}

// archiveKey places a timestamped copy in an archive/ prefix beside key.
func (d *S3Destination) archiveKey() string {
	dir, base := path.Split(d.key)
	return dir + "archive/" + d.now().UTC().Format("20060102T150405Z") + "-" + base
}

func (d *S3Destination) put(ctx context.Context, key string, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object %s: %w", key, err)
	}
	return nil
}
