// Package s3 reads documents from S3 compatible object storage.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// DefaultRegion is used when neither settings nor credentials name one.
const DefaultRegion = "us-east-1"

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Config configures the object store reader.
type Config struct {
	Region string
	// Endpoint overrides the AWS endpoint, for MinIO and similar stores.
	Endpoint     string
	UsePathStyle bool
	// HTTPClient replaces the SDK's default transport.
	HTTPClient *http.Client
}

// Reader serves s3:// URIs. A client is built per call from the
// invocation's credentials and discarded afterwards.
type Reader struct {
	cfg Config
}

// New creates an object store reader.
func New(cfg Config) *Reader {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return &Reader{cfg: cfg}
}

// Kind returns the object store source kind.
func (r *Reader) Kind() domain.SourceKind {
	return domain.SourceObjectStore
}

// Supports accepts s3:// URIs.
func (r *Reader) Supports(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ReadFile downloads the object into the staging area.
func (r *Reader) ReadFile(
	ctx context.Context,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	bucket, key := loc.Authority, loc.Path()
	if key == "" {
		return domain.StagedFile{}, domain.ValidationError("s3 location %s names no object key", loc.Raw)
	}

	client, err := r.client(ctx, creds)
	if err != nil {
		return domain.StagedFile{}, err
	}

	dest, err := area.Path(path.Base(key))
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging s3 object: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging s3 object: %w", err)
	}
	defer f.Close()

	downloader := manager.NewDownloader(client)
	n, err := downloader.Download(ctx, f, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return domain.StagedFile{}, classify(err, loc.Raw)
	}

	return domain.StagedFile{Path: dest, Name: path.Base(key), Size: n}, nil
}

// ListFiles lists the objects directly under the location's prefix.
func (r *Reader) ListFiles(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error) {
	client, err := r.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	prefix := loc.Path()
	if prefix != "" {
		prefix += "/"
	}

	paginator := awss3.NewListObjectsV2Paginator(client, &awss3.ListObjectsV2Input{
		Bucket:    aws.String(loc.Authority),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []domain.DirectoryEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, loc.Raw)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			entries = append(entries, domain.DirectoryEntry{
				Name:     path.Base(key),
				Path:     fmt.Sprintf("s3://%s/%s", loc.Authority, key),
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	return entries, nil
}

func (r *Reader) client(ctx context.Context, creds domain.Credentials) (*awss3.Client, error) {
	region := r.cfg.Region
	opts := []func(*config.LoadOptions) error{}
	if c := creds.ObjectStore; c != nil {
		if c.Region != "" {
			region = c.Region
		}
		if c.AccessKeyID != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
			))
		}
	}
	opts = append(opts, config.WithRegion(region))
	if r.cfg.HTTPClient != nil {
		opts = append(opts, config.WithHTTPClient(r.cfg.HTTPClient))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, domain.SourceConnectionError("load aws config: %w", err)
	}

	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if r.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(r.cfg.Endpoint)
		}
		o.UsePathStyle = r.cfg.UsePathStyle
		o.DisableLogOutputChecksumValidationSkipped = true
	}), nil
}

func classify(err error, uri string) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return domain.NotFoundError("document not found: %s", uri)
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return domain.NotFoundError("bucket not found: %s", uri)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return domain.NotFoundError("document not found: %s", uri)
		}
	}
	return domain.SourceConnectionError("s3 request failed for %s: %w", uri, err)
}
