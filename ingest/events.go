package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

const (
	s3EventSource          = "aws:s3"
	eventBridgeSource      = "aws.s3"
	eventBridgeObjectEvent = "Object Created"
)

var ErrInvalidEvent = errors.New("invalid event format, expected s3 records or an eventbridge s3 event")

// ObjectRef identifies an uploaded object in the landing zone
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type eventProbe struct {
	Records json.RawMessage `json:"Records"`
	Source  string          `json:"source"`
}

type objectCreatedDetail struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key string `json:"key"`
	} `json:"object"`
}

// ParseEvent extracts the uploaded objects from a bucket notification or an eventbridge event.
// Records that don't originate from s3 or don't identify an object are dropped.
func ParseEvent(raw []byte) ([]ObjectRef, error) {
	probe := eventProbe{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	if len(probe.Records) > 0 {
		return parseS3Event(raw)
	}
	if probe.Source == eventBridgeSource {
		return parseEventBridgeEvent(raw)
	}
	return nil, ErrInvalidEvent
}

func parseS3Event(raw []byte) ([]ObjectRef, error) {
	event := events.S3Event{}
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	refs := make([]ObjectRef, 0, len(event.Records))
	for _, record := range event.Records {
		if record.EventSource != s3EventSource {
			continue
		}
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			key = record.S3.Object.Key
		}
		if record.S3.Bucket.Name == "" || key == "" {
			continue
		}
		refs = append(refs, ObjectRef{Bucket: record.S3.Bucket.Name, Key: key})
	}
	return refs, nil
}

func parseEventBridgeEvent(raw []byte) ([]ObjectRef, error) {
	event := events.CloudWatchEvent{}
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if event.DetailType != eventBridgeObjectEvent {
		return nil, ErrInvalidEvent
	}

	detail := objectCreatedDetail{}
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if detail.Bucket.Name == "" || detail.Object.Key == "" {
		return nil, fmt.Errorf("%w: expected bucket and key in detail", ErrInvalidEvent)
	}
	return []ObjectRef{{Bucket: detail.Bucket.Name, Key: detail.Object.Key}}, nil
}
