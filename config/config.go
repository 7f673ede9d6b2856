package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
	BackendSQS      = "sqs"
	BackendOutbox   = "outbox"

	LandingS3  = "s3"
	LandingGCS = "gcs"
)

type Config struct {
	HttpPort uint16 `envconfig:"MEDISYS_HTTP_SERVER_PORT" default:"8080" required:"true"`
	LogLevel string `envconfig:"MEDISYS_LOG_LEVEL" default:"debug"`

	ReportsBackend string `envconfig:"MEDISYS_REPORTS_BACKEND" default:"mongo"`
	ReportsTable   string `envconfig:"MEDISYS_REPORTS_TABLE" default:"medisys-reports"`

	QueueBackend         string `envconfig:"MEDISYS_QUEUE_BACKEND" default:"outbox"`
	NotificationQueueURL string `envconfig:"MEDISYS_NOTIFICATION_QUEUE_URL"`

	AWSRegion       string `envconfig:"MEDISYS_AWS_REGION" default:"us-east-1"`
	UserPoolId      string `envconfig:"MEDISYS_USER_POOL_ID"`
	HealthcareGroup string `envconfig:"MEDISYS_HEALTHCARE_GROUP" default:"healthcare"`
	SenderEmail     string `envconfig:"MEDISYS_SENDER_EMAIL"`

	LandingProvider    string `envconfig:"MEDISYS_LANDING_PROVIDER" default:"s3"`
	GCSCredentialsFile string `envconfig:"MEDISYS_GCS_CREDENTIALS_FILE"`

	UploadPrefixes       []string `envconfig:"MEDISYS_UPLOAD_PREFIXES" default:"public/uploads/,private/uploads/,uploads/"`
	DefaultReportsLimit  int      `envconfig:"MEDISYS_DEFAULT_REPORTS_LIMIT" default:"100"`
	DefaultTimeRangeDays int      `envconfig:"MEDISYS_DEFAULT_TIME_RANGE_DAYS" default:"30"`
	AuthCacheSize        int      `envconfig:"MEDISYS_AUTH_CACHE_SIZE" default:"1000"`
}

func New() *Config {
	return &Config{}
}

func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch c.ReportsBackend {
	case BackendMongo, BackendDynamoDB:
	default:
		return fmt.Errorf("unsupported reports backend %q", c.ReportsBackend)
	}
	switch c.QueueBackend {
	case BackendSQS, BackendOutbox:
	default:
		return fmt.Errorf("unsupported queue backend %q", c.QueueBackend)
	}
	if c.QueueBackend == BackendSQS && c.NotificationQueueURL == "" {
		return fmt.Errorf("notification queue url is required when using sqs")
	}
	switch c.LandingProvider {
	case LandingS3, LandingGCS:
	default:
		return fmt.Errorf("unsupported landing zone provider %q", c.LandingProvider)
	}
	return nil
}

func NewConfig() (*Config, error) {
	cfg := New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewAWSConfig loads the shared aws configuration using the default credential chain
func NewAWSConfig(cfg *Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
}
