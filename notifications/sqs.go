package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
)

// SQSClient is the subset of the SQS API used by the queue
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func NewSQSClient(cfg aws.Config) SQSClient {
	return sqs.NewFromConfig(cfg)
}

type SQSQueue struct {
	client   SQSClient
	queueURL string
	logger   *zap.SugaredLogger
}

var _ Queue = &SQSQueue{}

func NewSQSQueue(client SQSClient, cfg *config.Config, logger *zap.SugaredLogger) (*SQSQueue, error) {
	if cfg.NotificationQueueURL == "" {
		return nil, fmt.Errorf("notification queue url is required")
	}
	return &SQSQueue{
		client:   client,
		queueURL: cfg.NotificationQueueURL,
		logger:   logger,
	}, nil
}

func (s *SQSQueue) Enqueue(ctx context.Context, payload Payload, attributes map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("unable to marshal notification: %w", err)
	}

	messageAttributes := make(map[string]types.MessageAttributeValue, len(attributes))
	for name, value := range attributes {
		messageAttributes[name] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(value),
		}
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: messageAttributes,
	})
	if err != nil {
		return "", fmt.Errorf("%w: unable to send message: %w", ErrQueueUnavailable, err)
	}
	return aws.ToString(out.MessageId), nil
}

func (s *SQSQueue) Receive(ctx context.Context, max int, wait time.Duration, visibility time.Duration) ([]Notification, error) {
	out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(s.queueURL),
		MaxNumberOfMessages:   int32(max),
		WaitTimeSeconds:       int32(wait / time.Second),
		VisibilityTimeout:     int32(visibility / time.Second),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: unable to receive messages: %w", ErrQueueUnavailable, err)
	}

	result := make([]Notification, 0, len(out.Messages))
	for _, message := range out.Messages {
		notification := Notification{
			Id:                aws.ToString(message.MessageId),
			ReceiptHandle:     aws.ToString(message.ReceiptHandle),
			MessageAttributes: make(map[string]string, len(message.MessageAttributes)),
		}
		if err := json.Unmarshal([]byte(aws.ToString(message.Body)), &notification.Payload); err != nil {
			s.logger.Warnw("skipping notification with malformed body", "messageId", notification.Id, zap.Error(err))
			continue
		}
		for name, value := range message.MessageAttributes {
			notification.MessageAttributes[name] = aws.ToString(value.StringValue)
		}
		result = append(result, notification)
	}
	return result, nil
}

// Acknowledge deletes the message. SQS identifies received messages by receipt handle only.
func (s *SQSQueue) Acknowledge(ctx context.Context, messageId string, receiptHandle string) error {
	if receiptHandle == "" {
		return ErrReceiptRequired
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("%w: unable to delete message %s: %w", ErrQueueUnavailable, messageId, err)
	}
	return nil
}
