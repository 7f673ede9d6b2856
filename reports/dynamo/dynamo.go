package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/reports"
)

const (
	ClinicIndexName = "ClinicIndex"

	// Fixed width so that the GSI sort key orders lexicographically
	timestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Client is the subset of the DynamoDB API used by the repository
type Client interface {
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func NewClient(cfg aws.Config) Client {
	return dynamodb.NewFromConfig(cfg)
}

type Repository struct {
	client Client
	table  string
	logger *zap.SugaredLogger
}

var _ reports.Repository = &Repository{}

func NewRepository(client Client, cfg *config.Config, logger *zap.SugaredLogger) (*Repository, error) {
	if cfg.ReportsTable == "" {
		return nil, fmt.Errorf("reports table name is required")
	}

	return &Repository{
		client: client,
		table:  cfg.ReportsTable,
		logger: logger,
	}, nil
}

func (r *Repository) Put(ctx context.Context, report reports.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	item, err := marshalReport(report)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%w: error writing report %s: %w", reports.ErrUnavailable, report.ReportId, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, reportId string) (*reports.Report, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"report_id": &types.AttributeValueMemberS{Value: reportId},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching report %s: %w", reports.ErrUnavailable, reportId, err)
	}
	if len(out.Item) == 0 {
		return nil, reports.ErrNotFound
	}

	report := reports.Report{}
	if err := unmarshalReport(out.Item, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *Repository) ListByClinic(ctx context.Context, clinicId string, descending bool, limit int) ([]reports.Report, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(ClinicIndexName),
		KeyConditionExpression: aws.String("clinic_id = :clinic_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":clinic_id": &types.AttributeValueMemberS{Value: clinicId},
		},
		ScanIndexForward: aws.Bool(!descending),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result := make([]reports.Report, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() && (limit <= 0 || len(result) < limit) {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: error querying reports of clinic %s: %w", reports.ErrUnavailable, clinicId, err)
		}
		items, err := unmarshalReports(page.Items)
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
	}

	return truncate(result, limit), nil
}

// ScanAll reads every page of the table, then sorts and truncates, so the
// limit is exact regardless of how the scan is paginated
func (r *Repository) ScanAll(ctx context.Context, limit int) ([]reports.Report, error) {
	result := make([]reports.Report, 0)
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: error scanning reports: %w", reports.ErrUnavailable, err)
		}
		items, err := unmarshalReports(page.Items)
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
		pages++
	}
	r.logger.Debugw("scanned reports table", "pages", pages, "count", len(result))

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return truncate(result, limit), nil
}

func truncate(list []reports.Report, limit int) []reports.Report {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func encoderOptions(o *attributevalue.EncoderOptions) {
	o.TagKey = "json"
}

func decoderOptions(o *attributevalue.DecoderOptions) {
	o.TagKey = "json"
}

func marshalReport(report reports.Report) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMapWithOptions(report, encoderOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal report %s: %w", report.ReportId, err)
	}
	item["timestamp"] = &types.AttributeValueMemberS{Value: formatTime(report.Timestamp)}
	item["processing_time"] = &types.AttributeValueMemberS{Value: formatTime(report.ProcessingTime)}
	return item, nil
}

func unmarshalReport(item map[string]types.AttributeValue, report *reports.Report) error {
	if err := attributevalue.UnmarshalMapWithOptions(item, report, decoderOptions); err != nil {
		return fmt.Errorf("unable to unmarshal report: %w", err)
	}
	report.Timestamp = report.Timestamp.UTC()
	report.ProcessingTime = report.ProcessingTime.UTC()
	return nil
}

func unmarshalReports(items []map[string]types.AttributeValue) ([]reports.Report, error) {
	result := make([]reports.Report, len(items))
	for i, item := range items {
		if err := unmarshalReport(item, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
