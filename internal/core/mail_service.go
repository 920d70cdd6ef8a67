package core

import (
	"context"
	"errors"
	"fmt"

	"attendance.service/internal/core/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NotificationSender delivers one attendance notification. Errors are
// classified as TransientDeliveryError (worth retrying) or
// PermanentDeliveryError (retrying will not help).
type NotificationSender interface {
	SendAttendanceNotification(ctx context.Context, job model.NotificationJob) error
}

// SESClient is the slice of the AWS SES client the mail sender needs.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailService sends attendance notifications through AWS SES.
type SESMailService struct {
	client SESClient
	sender string
}

func NewSESMailService(client SESClient, sender string) *SESMailService {
	return &SESMailService{client: client, sender: sender}
}

// SendAttendanceNotification sends the "Attendance Record" mail for one job.
func (s *SESMailService) SendAttendanceNotification(ctx context.Context, job model.NotificationJob) error {
	tracer := otel.Tracer("ses-mail-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("app.employee_id", job.EmployeeID))

	departureText := "Departure: Not yet recorded"
	if job.DepartureTime != nil {
		departureText = "Departure: " + *job.DepartureTime
	}
	body := fmt.Sprintf("Hello %s,\n\nYour attendance has been recorded:\nDate: %s\nArrival: %s\n%s\n",
		job.EmployeeName, job.Date, job.ArrivalTime, departureText)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{job.EmployeeEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Attendance Record"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return classifyDeliveryError(err)
	}
	return nil
}

// classifyDeliveryError splits SES failures into permanent rejections and
// everything else, which is treated as transient and retried by the
// dispatcher.
func classifyDeliveryError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "MessageRejected", "MailFromDomainNotVerifiedException", "ConfigurationSetDoesNotExist":
			return &model.PermanentDeliveryError{Err: err}
		}
	}
	return &model.TransientDeliveryError{Err: err}
}
