package outbox

import (
	"context"
	errs "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/notifications"
)

const pollInterval = 250 * time.Millisecond

// Repository is a notification queue backed by a mongo collection
type Repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
	now        func() time.Time
}

var _ notifications.Queue = &Repository{}

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (*Repository, error) {
	repo := &Repository{
		collection: db.Collection(CollectionName),
		logger:     logger,
		now:        time.Now,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdTime", Value: 1}},
			Options: options.Index().SetName("CreatedTime"),
		},
		{
			Keys: bson.D{
				{Key: "eventType", Value: 1},
				{Key: "visibleTime", Value: 1},
			},
			Options: options.Index().SetName("VisibleEvents"),
		},
	})
	return err
}

func (r *Repository) Create(ctx context.Context, event Event) (string, error) {
	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return "", fmt.Errorf("%w: error inserting outbox event: %w", notifications.ErrQueueUnavailable, err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *Repository) Enqueue(ctx context.Context, payload notifications.Payload, attributes map[string]string) (string, error) {
	event, err := NewEvent(EventTypeNewReport, payload, attributes, r.now().UTC())
	if err != nil {
		return "", err
	}
	return r.Create(ctx, event)
}

// Receive leases up to max visible events, polling until wait elapses if none are visible
func (r *Repository) Receive(ctx context.Context, max int, wait time.Duration, visibility time.Duration) ([]notifications.Notification, error) {
	deadline := r.now().Add(wait)
	for {
		result, err := r.lease(ctx, max, visibility)
		if err != nil || len(result) > 0 || !r.now().Before(deadline) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, nil
		case <-time.After(pollInterval):
		}
	}
}

func (r *Repository) lease(ctx context.Context, max int, visibility time.Duration) ([]notifications.Notification, error) {
	result := make([]notifications.Notification, 0, max)
	for len(result) < max {
		now := r.now().UTC()
		selector := bson.M{
			"eventType":   EventTypeNewReport,
			"visibleTime": bson.M{"$lte": now},
		}
		update := bson.M{
			"$set": bson.M{
				"visibleTime":   now.Add(visibility),
				"receiptHandle": uuid.NewString(),
			},
			"$inc": bson.M{"receiveCount": 1},
		}
		opts := options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "createdTime", Value: 1}}).
			SetReturnDocument(options.After)

		event := Event{}
		err := r.collection.FindOneAndUpdate(ctx, selector, update, opts).Decode(&event)
		if errs.Is(err, mongo.ErrNoDocuments) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%w: error leasing outbox event: %w", notifications.ErrQueueUnavailable, err)
		}

		notification, err := event.Notification()
		if err != nil {
			r.logger.Warnw("skipping malformed outbox event", "id", event.Id, zap.Error(err))
			continue
		}
		result = append(result, notification)
	}
	return result, nil
}

// Acknowledge deletes the event. When a receipt handle is given it must match the latest lease.
func (r *Repository) Acknowledge(ctx context.Context, messageId string, receiptHandle string) error {
	id, err := primitive.ObjectIDFromHex(messageId)
	if err != nil {
		return notifications.ErrMessageNotFound
	}

	selector := bson.M{"_id": id}
	if receiptHandle != "" {
		selector["receiptHandle"] = receiptHandle
	}

	res, err := r.collection.DeleteOne(ctx, selector)
	if err != nil {
		return fmt.Errorf("%w: error deleting outbox event: %w", notifications.ErrQueueUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return notifications.ErrMessageNotFound
	}
	return nil
}
