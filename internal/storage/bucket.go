package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/muhammadolammi/skillscan/internal/config"
	"github.com/muhammadolammi/skillscan/internal/extract"
	"github.com/rs/zerolog"
)

// ObjectAPI is the part of the S3 client BucketSource needs.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BucketSource pulls resumes out of an S3-compatible bucket so they can
// be scanned like a local directory.
type BucketSource struct {
	client   ObjectAPI
	bucket   string
	attempts int
	logger   zerolog.Logger
}

func NewBucketSource(client ObjectAPI, bucket string, logger zerolog.Logger) *BucketSource {
	return &BucketSource{
		client:   client,
		bucket:   bucket,
		attempts: 3,
		logger:   logger,
	}
}

// NewR2Client builds an S3 client with static credentials against the
// configured R2 endpoint.
func NewR2Client(ctx context.Context, cfg config.R2Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint())
		o.UsePathStyle = cfg.Endpoint != ""
	}), nil
}

// Fetch downloads every .pdf and .docx object under prefix into ws and
// returns the local paths in listing order. Other keys are skipped.
func (b *BucketSource) Fetch(ctx context.Context, prefix string, ws *Workspace) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	var paths []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in %s: %w", b.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !extract.Supported(key) {
				continue
			}

			local, err := retry(ctx, b.attempts, func() (string, error) {
				return b.download(ctx, key, ws)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", key, err)
			}
			b.logger.Debug().Str("key", key).Str("path", local).Msg("Downloaded resume")
			paths = append(paths, local)
		}
	}
	return paths, nil
}

func (b *BucketSource) download(ctx context.Context, key string, ws *Workspace) (string, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	return ws.Save(path.Base(key), out.Body)
}
