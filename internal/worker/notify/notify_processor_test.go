package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"attendance.service/internal/core/model"
	"attendance.service/internal/worker/notify"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubSender) SendAttendanceNotification(ctx context.Context, job model.NotificationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func message(body string, receiveCount string) types.Message {
	msg := types.Message{
		Body:      aws.String(body),
		MessageId: aws.String("msg-1"),
	}
	if receiveCount != "" {
		msg.Attributes = map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): receiveCount,
		}
	}
	return msg
}

const jobBody = `{"employeeId":"emp-1","employeeEmail":"emp-1@example.com","employeeName":"Test Employee","date":"2025-02-08","arrivalTime":"09:00:00","departureTime":null}`

func TestProcess_Success_NoRetry(t *testing.T) {
	sender := &stubSender{}
	p := notify.NewProcessor(sender, 5)

	shouldRetry, delay, err := p.Process(context.Background(), message(jobBody, "1"))
	require.NoError(t, err)
	assert.False(t, shouldRetry)
	assert.Zero(t, delay)
	assert.Equal(t, 1, sender.calls)
}

func TestProcess_TransientFailure_RetriesWithBackoff(t *testing.T) {
	sender := &stubSender{err: &model.TransientDeliveryError{Err: errors.New("timeout")}}
	p := notify.NewProcessor(sender, 5)

	shouldRetry, delay, err := p.Process(context.Background(), message(jobBody, "2"))
	require.Error(t, err)
	assert.True(t, shouldRetry)
	assert.Equal(t, int32(40), delay, "second attempt backs off 2^2*10 seconds")
}

func TestProcess_PermanentFailure_Dropped(t *testing.T) {
	sender := &stubSender{err: &model.PermanentDeliveryError{Err: errors.New("address rejected")}}
	p := notify.NewProcessor(sender, 5)

	shouldRetry, _, err := p.Process(context.Background(), message(jobBody, "1"))
	require.Error(t, err)
	assert.False(t, shouldRetry, "permanent failures must not be retried")
}

func TestProcess_ExhaustedAttempts_DroppedWithoutSending(t *testing.T) {
	sender := &stubSender{err: &model.TransientDeliveryError{Err: errors.New("timeout")}}
	p := notify.NewProcessor(sender, 3)

	shouldRetry, _, err := p.Process(context.Background(), message(jobBody, "4"))
	require.NoError(t, err)
	assert.False(t, shouldRetry)
	assert.Zero(t, sender.calls, "exhausted jobs are dropped, not re-sent")
}

func TestProcess_MalformedBody_NotRetried(t *testing.T) {
	sender := &stubSender{}
	p := notify.NewProcessor(sender, 5)

	shouldRetry, _, err := p.Process(context.Background(), message("{not json", "1"))
	require.Error(t, err)
	assert.False(t, shouldRetry)
	assert.Zero(t, sender.calls)
}
