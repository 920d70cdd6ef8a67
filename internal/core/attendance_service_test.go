package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher records submitted jobs and can be told to fail.
type fakeDispatcher struct {
	mu     sync.Mutex
	jobs   []model.NotificationJob
	reject error
}

func (d *fakeDispatcher) Submit(ctx context.Context, job model.NotificationJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject != nil {
		return d.reject
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *fakeDispatcher) submitted() []model.NotificationJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.NotificationJob(nil), d.jobs...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, at time.Time) (*core.AttendanceService, *memory.Directory, *fakeDispatcher) {
	t.Helper()
	dir := memory.NewDirectory()
	ledger := memory.NewLedger(dir)
	dispatcher := &fakeDispatcher{}
	svc := core.NewAttendanceService(ledger, dir, dispatcher).WithClock(fixedClock(at))
	return svc, dir, dispatcher
}

func addEmployee(t *testing.T, dir *memory.Directory) *model.Employee {
	t.Helper()
	e, err := dir.Create(context.Background(), model.Employee{
		FirstName:          "Elena",
		LastName:           "Marin",
		Email:              "elena.marin@example.com",
		EmployeeIdentifier: "EMP-0001",
	})
	require.NoError(t, err)
	return e
}

var nineAM = time.Date(2025, time.February, 8, 9, 0, 0, 0, time.UTC)

func TestRecord_Arrival_CreatesRecordAndEnqueuesJob(t *testing.T) {
	svc, dir, dispatcher := newTestService(t, nineAM)
	employee := addEmployee(t, dir)

	rec, err := svc.Record(context.Background(), employee.ID, model.EventArrival)
	require.NoError(t, err)

	assert.Equal(t, employee.ID, rec.EmployeeID)
	assert.Equal(t, "2025-02-08", rec.Date)
	assert.Equal(t, "09:00:00", rec.ArrivalTime)
	assert.Nil(t, rec.DepartureTime)

	jobs := dispatcher.submitted()
	require.Len(t, jobs, 1)
	assert.Equal(t, "Elena Marin", jobs[0].EmployeeName)
	assert.Equal(t, "elena.marin@example.com", jobs[0].EmployeeEmail)
	assert.Equal(t, "2025-02-08", jobs[0].Date)
	assert.Equal(t, "09:00:00", jobs[0].ArrivalTime)
	assert.Nil(t, jobs[0].DepartureTime)
}

func TestRecord_DuplicateArrival_Conflict(t *testing.T) {
	svc, dir, dispatcher := newTestService(t, nineAM)
	employee := addEmployee(t, dir)

	_, err := svc.Record(context.Background(), employee.ID, model.EventArrival)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), employee.ID, model.EventArrival)
	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.MsgArrivalRecorded, conflict.Message)

	// Only the first event produced a notification.
	assert.Len(t, dispatcher.submitted(), 1)
}

func TestRecord_DepartureFlow(t *testing.T) {
	dir := memory.NewDirectory()
	ledger := memory.NewLedger(dir)
	dispatcher := &fakeDispatcher{}
	employee := addEmployee(t, dir)

	morning := core.NewAttendanceService(ledger, dir, dispatcher).WithClock(fixedClock(nineAM))
	_, err := morning.Record(context.Background(), employee.ID, model.EventArrival)
	require.NoError(t, err)

	evening := core.NewAttendanceService(ledger, dir, dispatcher).
		WithClock(fixedClock(time.Date(2025, time.February, 8, 17, 30, 0, 0, time.UTC)))
	rec, err := evening.Record(context.Background(), employee.ID, model.EventDeparture)
	require.NoError(t, err)
	require.NotNil(t, rec.DepartureTime)
	assert.Equal(t, "17:30:00", *rec.DepartureTime)

	jobs := dispatcher.submitted()
	require.Len(t, jobs, 2)
	require.NotNil(t, jobs[1].DepartureTime)
	assert.Equal(t, "17:30:00", *jobs[1].DepartureTime)

	// A second departure is rejected and the recorded time is immutable.
	_, err = evening.Record(context.Background(), employee.ID, model.EventDeparture)
	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.MsgDepartureRecorded, conflict.Message)
}

func TestRecord_DepartureWithoutArrival_NotFound(t *testing.T) {
	svc, dir, dispatcher := newTestService(t, nineAM)
	employee := addEmployee(t, dir)

	_, err := svc.Record(context.Background(), employee.ID, model.EventDeparture)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.MsgNoArrival, notFound.Message)
	assert.Empty(t, dispatcher.submitted())
}

func TestRecord_UnknownEmployee_NotFound(t *testing.T) {
	svc, _, dispatcher := newTestService(t, nineAM)

	_, err := svc.Record(context.Background(), "e7e6cbb1-2c43-4c1c-9189-0a314f0fde8c", model.EventArrival)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.MsgEmployeeNotFound, notFound.Message)

	// No ledger write, no notification job.
	records, lerr := svc.List(context.Background(), "", "")
	require.NoError(t, lerr)
	assert.Empty(t, records)
	assert.Empty(t, dispatcher.submitted())
}

func TestRecord_EnqueueFailureDoesNotFailRecording(t *testing.T) {
	svc, dir, dispatcher := newTestService(t, nineAM)
	employee := addEmployee(t, dir)
	dispatcher.reject = &model.CapacityError{Capacity: 1}

	rec, err := svc.Record(context.Background(), employee.ID, model.EventArrival)
	require.NoError(t, err, "a full notification queue must not fail the write")
	assert.Equal(t, "09:00:00", rec.ArrivalTime)

	// The write is durable even though the job was dropped.
	records, err := svc.List(context.Background(), "2025-02-08", employee.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestRecord_DirectoryErrorPropagates(t *testing.T) {
	dir := memory.NewDirectory()
	ledger := memory.NewLedger(dir)
	svc := core.NewAttendanceService(ledger, failingDirectory{}, &fakeDispatcher{}).WithClock(fixedClock(nineAM))

	_, err := svc.Record(context.Background(), "any", model.EventArrival)
	require.Error(t, err)
	assert.ErrorContains(t, err, "resolving employee")
}

func TestRoundTrip_ListAndDailyReport(t *testing.T) {
	svc, dir, _ := newTestService(t, nineAM)
	employee := addEmployee(t, dir)

	_, err := svc.Record(context.Background(), employee.ID, model.EventArrival)
	require.NoError(t, err)

	records, err := svc.List(context.Background(), "2025-02-08", employee.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, employee.ID, records[0].EmployeeID)
	assert.Equal(t, "09:00:00", records[0].ArrivalTime)
	assert.Nil(t, records[0].DepartureTime)

	report, err := svc.DailyReport(context.Background(), "2025-02-08")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Elena Marin", report[0].EmployeeName)
}

// failingDirectory simulates a broken directory backend.
type failingDirectory struct{}

func (failingDirectory) Resolve(context.Context, string) (*model.Employee, error) {
	return nil, errors.New("directory down")
}
func (failingDirectory) FindByEmailOrIdentifier(context.Context, string, string, string) (*model.Employee, error) {
	return nil, errors.New("directory down")
}
func (failingDirectory) Create(context.Context, model.Employee) (*model.Employee, error) {
	return nil, errors.New("directory down")
}
func (failingDirectory) List(context.Context, int, int) ([]model.Employee, int, error) {
	return nil, 0, errors.New("directory down")
}
func (failingDirectory) Update(context.Context, model.Employee) (*model.Employee, error) {
	return nil, errors.New("directory down")
}
func (failingDirectory) Delete(context.Context, string) error {
	return errors.New("directory down")
}
