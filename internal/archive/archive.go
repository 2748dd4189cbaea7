// Package archive stores rendered manifest bundles in S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/acmech/dataplane/internal/config"
)

const contentType = "application/yaml"

// ErrBucketNotFound is returned when the configured bucket does not exist.
var ErrBucketNotFound = errors.New("archive bucket not found")

// Entry is one rendered bundle for a cluster in a reconcile pass.
type Entry struct {
	OrgID       string
	ClusterID   string
	ClusterSlug string
	RunID       string
	Data        []byte
}

// Archive writes manifest bundles to a bucket.
type Archive struct {
	s3      *s3.Client
	bucket  string
	prefix  string
	timeout time.Duration
}

// New creates an Archive from configuration. Static credentials are used when
// an access key is configured, otherwise the default AWS credential chain.
// A positive timeout bounds every Store call and each HTTP request.
func New(ctx context.Context, cfg config.ArchiveConfig, timeout time.Duration) (*Archive, error) {
	if !cfg.Enabled() {
		return nil, errors.New("archive bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if timeout > 0 {
		opts = append(opts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newArchive(client, cfg.Bucket, cfg.Prefix, timeout), nil
}

func newArchive(client *s3.Client, bucket, prefix string, timeout time.Duration) *Archive {
	return &Archive{
		s3:      client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		timeout: timeout,
	}
}

// Key returns the object key for a run's bundle.
func (a *Archive) Key(e Entry) string {
	return path.Join(a.prefix, e.OrgID, e.ClusterSlug, e.RunID+".yaml")
}

// LatestKey returns the object key that always holds the most recent bundle.
func (a *Archive) LatestKey(e Entry) string {
	return path.Join(a.prefix, e.OrgID, e.ClusterSlug, "latest.yaml")
}

// Store uploads the bundle under its run key and then refreshes latest.yaml.
// It returns the run key.
func (a *Archive) Store(ctx context.Context, e Entry) (string, error) {
	if e.ClusterSlug == "" || e.RunID == "" {
		return "", errors.New("archive entry requires cluster slug and run id")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	key := a.Key(e)
	if err := a.put(ctx, key, e); err != nil {
		return "", err
	}
	if err := a.put(ctx, a.LatestKey(e), e); err != nil {
		return key, err
	}
	return key, nil
}

func (a *Archive) put(ctx context.Context, key string, e Entry) error {
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(e.Data),
		ContentLength: aws.Int64(int64(len(e.Data))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"cluster-id": e.ClusterID,
			"run-id":     e.RunID,
		},
	})
	if err != nil {
		if isNoSuchBucket(err) {
			return fmt.Errorf("failed to put object %s: %w: %s", key, ErrBucketNotFound, a.bucket)
		}
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, a.bucket, err)
	}
	return nil
}

func isNoSuchBucket(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}
