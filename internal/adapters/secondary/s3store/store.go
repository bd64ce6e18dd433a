package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	log "github.com/sirupsen/logrus"

	"model-serving-service/internal/config"
	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

type s3Store struct {
	client     *s3.Client
	downloader *manager.Downloader
}

// NewS3Store creates an ArtifactStore over S3 or an S3 compatible endpoint.
// Without static keys the default credential chain (task role, env, profile) is used.
func NewS3Store(ctx context.Context, cfg *config.StorageConfig) (output.ArtifactStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: cfg.Endpoint}, nil
				},
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
	})

	return &s3Store{
		client:     client,
		downloader: manager.NewDownloader(client),
	}, nil
}

func (s *s3Store) Scheme() string {
	return domain.SchemeS3
}

// Open downloads the whole object into memory. Model packages are read once at startup.
func (s *s3Store) Open(ctx context.Context, loc domain.ArtifactLocation, name string) (io.ReadCloser, error) {
	key := path.Join(loc.Prefix, name)
	buf := manager.NewWriteAtBuffer(nil)

	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", domain.ErrArtifactNotFound, loc.Bucket, key)
		}
		return nil, fmt.Errorf("download s3://%s/%s: %w", loc.Bucket, key, err)
	}

	log.WithFields(log.Fields{
		"bucket": loc.Bucket,
		"key":    key,
		"bytes":  n,
	}).Debug("object downloaded")
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apie *smithyhttp.ResponseError
	if errors.As(err, &apie) {
		return apie.HTTPStatusCode() == 404
	}
	return false
}

var _ output.ArtifactStore = (*s3Store)(nil)
