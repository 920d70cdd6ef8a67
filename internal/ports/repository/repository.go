package repository

import (
	"context"

	"attendance.service/internal/core/model"
)

// Ledger is the durable, invariant-enforcing store of attendance records.
// Implementations must make CreateArrival and SetDeparture atomic per
// (employeeID, date) key: concurrent duplicate writes for the same key yield
// exactly one success, the rest a ConflictError.
type Ledger interface {
	// FindRecord returns the record for (employeeID, date), or nil when absent.
	FindRecord(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error)
	// CreateArrival inserts the day's record. Returns a ConflictError when a
	// record for the key already exists.
	CreateArrival(ctx context.Context, employeeID, date, arrival string) (*model.AttendanceRecord, error)
	// SetDeparture sets the departure time exactly once. Returns a
	// NotFoundError when no record exists and a ConflictError when the
	// departure is already set.
	SetDeparture(ctx context.Context, employeeID, date, departure string) (*model.AttendanceRecord, error)
	// ListForDate lists records ordered by date then arrival time, both
	// descending. Empty filter values mean "all".
	ListForDate(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error)
	// DailyReport lists a single day's records ordered by arrival time
	// ascending, joined with employee display fields.
	DailyReport(ctx context.Context, date string) ([]model.ReportRow, error)
}

// EmployeeDirectory resolves and manages employee entries.
type EmployeeDirectory interface {
	// Resolve returns the employee with the given id, or nil when absent.
	Resolve(ctx context.Context, id string) (*model.Employee, error)
	// FindByEmailOrIdentifier returns a matching employee other than
	// excludeID, or nil. Used to enforce email/identifier uniqueness.
	FindByEmailOrIdentifier(ctx context.Context, email, identifier, excludeID string) (*model.Employee, error)
	Create(ctx context.Context, e model.Employee) (*model.Employee, error)
	List(ctx context.Context, page, limit int) ([]model.Employee, int, error)
	Update(ctx context.Context, e model.Employee) (*model.Employee, error)
	Delete(ctx context.Context, id string) error
}
