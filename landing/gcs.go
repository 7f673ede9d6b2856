package landing

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/medisys-health/diagnostics/config"
)

func NewGCSClient(ctx context.Context, cfg *config.Config) (*storage.Client, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gcs client: %w", err)
	}
	return client, nil
}

type GCSStore struct {
	client *storage.Client
	logger *zap.SugaredLogger
}

func NewGCSStore(client *storage.Client, logger *zap.SugaredLogger) *GCSStore {
	return &GCSStore{client: client, logger: logger}
}

func (g *GCSStore) Get(ctx context.Context, bucket string, key string) ([]byte, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, bucket, key)
	} else if err != nil {
		return nil, fmt.Errorf("unable to open gs://%s/%s: %w", bucket, key, err)
	}

	content, err := readAll(reader)
	if err != nil {
		return nil, fmt.Errorf("unable to read gs://%s/%s: %w", bucket, key, err)
	}

	g.logger.Debugw("downloaded object", "bucket", bucket, "key", key, "size", len(content))
	return content, nil
}
