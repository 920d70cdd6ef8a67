package core

import (
	"context"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// Dispatcher is the output port for handing off notification jobs. Both the
// in-process pool and the SQS producer satisfy it.
type Dispatcher interface {
	Submit(ctx context.Context, job model.NotificationJob) error
}

// AttendanceService is the event-recording engine: it validates a requested
// arrival/departure against the ledger, performs the transactional write and
// enqueues a notification job. "Today" is the UTC calendar day.
type AttendanceService struct {
	ledger     repository.Ledger
	directory  repository.EmployeeDirectory
	dispatcher Dispatcher
	now        func() time.Time
}

// NewAttendanceService wires the recorder to its ledger, directory and
// notification dispatcher.
func NewAttendanceService(ledger repository.Ledger, directory repository.EmployeeDirectory, dispatcher Dispatcher) *AttendanceService {
	return &AttendanceService{
		ledger:     ledger,
		directory:  directory,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Used by tests to pin "today".
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Record applies one attendance event for today. The ledger write is a
// single atomic operation; the notification hand-off is best-effort and
// never fails or rolls back the write.
func (s *AttendanceService) Record(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error) {
	employee, err := s.directory.Resolve(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("resolving employee: %w", err)
	}
	if employee == nil {
		return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}

	now := s.now().UTC()
	date := now.Format(model.DateFormat)
	clock := now.Format(model.TimeFormat)

	var record *model.AttendanceRecord
	switch event {
	case model.EventArrival:
		record, err = s.ledger.CreateArrival(ctx, employeeID, date, clock)
	case model.EventDeparture:
		record, err = s.ledger.SetDeparture(ctx, employeeID, date, clock)
	default:
		return nil, fmt.Errorf("unsupported event type %q", event)
	}
	if err != nil {
		return nil, err
	}

	job := model.NotificationJob{
		EmployeeID:    employee.ID,
		EmployeeEmail: employee.Email,
		EmployeeName:  employee.DisplayName(),
		Date:          record.Date,
		ArrivalTime:   record.ArrivalTime,
		DepartureTime: record.DepartureTime,
	}
	if err := s.dispatcher.Submit(ctx, job); err != nil {
		// The event is already durably recorded; notification is best-effort.
		log.Ctx(ctx).Warn().Err(err).
			Str("employee_id", employee.ID).
			Str("date", record.Date).
			Msg("Failed to enqueue attendance notification")
	}

	return record, nil
}

// List returns attendance records newest-first, optionally filtered by date
// and employee.
func (s *AttendanceService) List(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
	return s.ledger.ListForDate(ctx, date, employeeID)
}

// DailyReport returns one day's records in arrival order with employee
// display fields, ready for the rendering collaborator.
func (s *AttendanceService) DailyReport(ctx context.Context, date string) ([]model.ReportRow, error) {
	return s.ledger.DailyReport(ctx, date)
}
