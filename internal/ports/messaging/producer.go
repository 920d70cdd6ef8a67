package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SQSClient defines the slice of the AWS SQS client the producer needs.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Producer publishes notification jobs to the durable SQS queue consumed by
// the notify worker. It is the queue-backed alternative to the in-process
// pool and satisfies core.Dispatcher.
type Producer struct {
	client   SQSClient
	queueURL string
}

// NewProducer creates a producer for the given queue.
func NewProducer(client SQSClient, queueURL string) *Producer {
	return &Producer{client: client, queueURL: queueURL}
}

// Submit publishes one job with the current trace context injected into the
// message attributes so the worker continues the trace.
func (p *Producer) Submit(ctx context.Context, job model.NotificationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("app.employee_id", job.EmployeeID))
	}

	attributes := telemetry.InjectTraceContext(ctx)
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attributes,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to notification queue: %w", err)
	}
	return nil
}
