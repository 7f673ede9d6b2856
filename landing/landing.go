package landing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
)

var ErrObjectNotFound = errors.New("object not found in landing zone")

//go:generate go tool mockgen -source=./landing.go -destination=./test/mock_landing.go -package test

// ObjectStore reads uploaded exports from the landing zone
type ObjectStore interface {
	Get(ctx context.Context, bucket string, key string) ([]byte, error)
}

// NewObjectStore returns the object store of the configured provider
func NewObjectStore(cfg *config.Config, awsConfig aws.Config, logger *zap.SugaredLogger) (ObjectStore, error) {
	switch cfg.LandingProvider {
	case config.LandingS3:
		return NewS3Store(NewS3Client(awsConfig), logger), nil
	case config.LandingGCS:
		client, err := NewGCSClient(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return NewGCSStore(client, logger), nil
	default:
		return nil, fmt.Errorf("unsupported landing zone provider %q", cfg.LandingProvider)
	}
}

func readAll(body io.ReadCloser) ([]byte, error) {
	defer body.Close()
	return io.ReadAll(body)
}
