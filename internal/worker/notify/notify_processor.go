package notify

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Processor handles notification jobs from the SQS queue. It wraps the mail
// sender in a circuit breaker so a struggling mail provider is not hammered
// by every queued job at once.
type Processor struct {
	sender      core.NotificationSender
	maxAttempts int
	cb          *gobreaker.CircuitBreaker
}

// NewProcessor creates a processor that gives up on a job after maxAttempts
// deliveries.
func NewProcessor(sender core.NotificationSender, maxAttempts int) *Processor {
	settings := gobreaker.Settings{
		Name:        "Mail-Sender",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &Processor{
		sender:      sender,
		maxAttempts: maxAttempts,
		cb:          gobreaker.NewCircuitBreaker(settings),
	}
}

// Process delivers one notification job. Transient failures are retried via
// the queue's visibility timeout with exponential backoff; permanent
// failures and exhausted jobs are dropped.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var job model.NotificationJob
	if err := json.Unmarshal([]byte(*msg.Body), &job); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal notification job")
		return false, 0, err // do not retry a malformed message
	}

	attempt := receiveCount(msg)
	if attempt > p.maxAttempts {
		log.Ctx(ctx).Warn().
			Str("employee_id", job.EmployeeID).
			Int("attempt", attempt).
			Msg("Notification attempts exhausted, dropping job")
		return false, 0, nil
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.sender.SendAttendanceNotification(ctx, job)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is open; skipping mail send")
			return true, calculateBackoff(attempt), err
		}
		var permanent *model.PermanentDeliveryError
		if errors.As(err, &permanent) {
			return false, 0, err
		}
		return true, calculateBackoff(attempt), err
	}

	log.Ctx(ctx).Info().
		Str("employee_id", job.EmployeeID).
		Str("date", job.Date).
		Msg("Attendance notification sent")
	return false, 0, nil
}

// receiveCount reads how many times SQS has delivered the message.
func receiveCount(msg types.Message) int {
	raw, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// calculateBackoff returns the visibility delay before the next attempt,
// growing exponentially and capped at one hour.
func calculateBackoff(attempt int) int32 {
	backoff := int32(math.Pow(2, float64(attempt)) * 10)
	if backoff > 3600 {
		return 3600
	}
	return backoff
}
