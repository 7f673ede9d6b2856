package landing

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Client is the subset of the S3 API used to read uploads
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func NewS3Client(cfg aws.Config) S3Client {
	return s3.NewFromConfig(cfg)
}

type S3Store struct {
	client S3Client
	logger *zap.SugaredLogger
}

func NewS3Store(client S3Client, logger *zap.SugaredLogger) *S3Store {
	return &S3Store{client: client, logger: logger}
}

func (s *S3Store) Get(ctx context.Context, bucket string, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, bucket, key)
	} else if err != nil {
		return nil, fmt.Errorf("unable to download s3://%s/%s: %w", bucket, key, err)
	}

	content, err := readAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read s3://%s/%s: %w", bucket, key, err)
	}

	s.logger.Debugw("downloaded object", "bucket", bucket, "key", key, "size", len(content))
	return content, nil
}
