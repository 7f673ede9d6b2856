package repository

import (
	"context"
	errs "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/reports"
	"github.com/medisys-health/diagnostics/store"
)

const (
	CollectionName = "reports"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (*Repository, error) {
	repo := &Repository{
		collection: db.Collection(CollectionName),
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type Repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

var _ reports.Repository = &Repository{}

func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "reportId", Value: 1},
			},
			Options: options.Index().
				SetBackground(true).
				SetUnique(true).
				SetName("UniqueReportId"),
		},
		{
			Keys: bson.D{
				{Key: "clinicId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetBackground(true).
				SetName("ClinicIndex"),
		},
		{
			Keys: bson.D{
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetBackground(true).
				SetName("ReportsByTimestamp"),
		},
	})
	return err
}

func (r *Repository) Put(ctx context.Context, report reports.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	selector := bson.M{"reportId": report.ReportId}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, selector, report, opts)
	if store.IsDuplicateKeyError(err) {
		// A concurrent upsert of the same report inserted it first
		_, err = r.collection.ReplaceOne(ctx, selector, report, opts)
	}
	if err != nil {
		return fmt.Errorf("%w: error writing report %s: %w", reports.ErrUnavailable, report.ReportId, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, reportId string) (*reports.Report, error) {
	report := &reports.Report{}
	err := r.collection.FindOne(ctx, bson.M{"reportId": reportId}).Decode(report)
	if errs.Is(err, mongo.ErrNoDocuments) {
		return nil, reports.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%w: error fetching report %s: %w", reports.ErrUnavailable, reportId, err)
	}
	return report, nil
}

func (r *Repository) ListByClinic(ctx context.Context, clinicId string, descending bool, limit int) ([]reports.Report, error) {
	return r.find(ctx, bson.M{"clinicId": clinicId}, newestFirst(descending), limit)
}

func (r *Repository) ScanAll(ctx context.Context, limit int) ([]reports.Report, error) {
	return r.find(ctx, bson.M{}, newestFirst(true), limit)
}

func newestFirst(descending bool) bson.D {
	return store.SortDocument(
		&store.Sort{Attribute: "timestamp", Ascending: !descending},
		&store.Sort{Attribute: "reportId", Ascending: !descending},
	)
}

func (r *Repository) find(ctx context.Context, selector bson.M, sort bson.D, limit int) ([]reports.Report, error) {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing reports: %w", reports.ErrUnavailable, err)
	}

	result := make([]reports.Report, 0)
	if err = cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%w: error decoding reports list: %w", reports.ErrUnavailable, err)
	}

	return result, nil
}
