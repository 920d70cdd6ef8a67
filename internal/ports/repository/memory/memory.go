// Package memory holds in-memory implementations of the repository
// contracts. They enforce the same invariants as the PostgreSQL versions and
// back the unit tests and local no-database runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"attendance.service/internal/core/model"
	"github.com/google/uuid"
)

// Ledger is an in-memory attendance ledger. Writers for the same
// (employeeID, date) key are serialized through a per-key lock table, so
// concurrent duplicate arrivals resolve to exactly one success while
// unrelated keys proceed without contention.
type Ledger struct {
	dir *Directory

	mu      sync.RWMutex
	records map[string]*model.AttendanceRecord
	locks   sync.Map // key -> *sync.Mutex
}

// NewLedger creates an empty ledger. The directory is only consulted for the
// daily report join.
func NewLedger(dir *Directory) *Ledger {
	return &Ledger{
		dir:     dir,
		records: make(map[string]*model.AttendanceRecord),
	}
}

func recordKey(employeeID, date string) string {
	return employeeID + "|" + date
}

func (l *Ledger) keyLock(key string) *sync.Mutex {
	v, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// FindRecord returns a copy of the record for the key, or nil.
func (l *Ledger) FindRecord(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[recordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// CreateArrival inserts the day's record or fails with a ConflictError. The
// key lock serializes the check-and-insert per (employeeID, date); the global
// mutex is held only for the map operations, so unrelated keys do not
// contend.
func (l *Ledger) CreateArrival(ctx context.Context, employeeID, date, arrival string) (*model.AttendanceRecord, error) {
	key := recordKey(employeeID, date)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	l.mu.RLock()
	_, exists := l.records[key]
	l.mu.RUnlock()
	if exists {
		return nil, &model.ConflictError{Message: model.MsgArrivalRecorded}
	}

	now := time.Now().UTC()
	rec := &model.AttendanceRecord{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Date:        date,
		ArrivalTime: arrival,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	l.mu.Lock()
	l.records[key] = rec
	l.mu.Unlock()

	cp := *rec
	return &cp, nil
}

// SetDeparture sets the departure time exactly once. Records are replaced,
// never mutated in place, so readers holding only the global read lock see a
// consistent value.
func (l *Ledger) SetDeparture(ctx context.Context, employeeID, date, departure string) (*model.AttendanceRecord, error) {
	key := recordKey(employeeID, date)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	l.mu.RLock()
	rec, exists := l.records[key]
	l.mu.RUnlock()

	if !exists {
		return nil, &model.NotFoundError{Message: model.MsgNoArrival}
	}
	if rec.DepartureTime != nil {
		return nil, &model.ConflictError{Message: model.MsgDepartureRecorded}
	}

	updated := *rec
	dep := departure
	updated.DepartureTime = &dep
	updated.UpdatedAt = time.Now().UTC()

	l.mu.Lock()
	l.records[key] = &updated
	l.mu.Unlock()

	cp := updated
	return &cp, nil
}

// ListForDate lists records newest-first with optional date/employee filters.
func (l *Ledger) ListForDate(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := []model.AttendanceRecord{}
	for _, rec := range l.records {
		if date != "" && rec.Date != date {
			continue
		}
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ArrivalTime > records[j].ArrivalTime
	})
	return records, nil
}

// DailyReport lists one day's records in arrival order, joined with the
// directory's display fields. Records for unknown employees are skipped, as
// the SQL join would skip them.
func (l *Ledger) DailyReport(ctx context.Context, date string) ([]model.ReportRow, error) {
	records, err := l.ListForDate(ctx, date, "")
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return strings.Compare(records[i].ArrivalTime, records[j].ArrivalTime) < 0
	})

	report := []model.ReportRow{}
	for _, rec := range records {
		emp, err := l.dir.Resolve(ctx, rec.EmployeeID)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			continue
		}
		report = append(report, model.ReportRow{
			AttendanceRecord: rec,
			EmployeeName:     emp.DisplayName(),
			EmployeeEmail:    emp.Email,
		})
	}
	return report, nil
}

// Directory is an in-memory employee directory.
type Directory struct {
	mu        sync.RWMutex
	employees map[string]*model.Employee
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{employees: make(map[string]*model.Employee)}
}

// Resolve returns a copy of the employee with the given id, or nil.
func (d *Directory) Resolve(ctx context.Context, id string) (*model.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// FindByEmailOrIdentifier returns a matching employee other than excludeID.
func (d *Directory) FindByEmailOrIdentifier(ctx context.Context, email, identifier, excludeID string) (*model.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.employees {
		if e.ID == excludeID {
			continue
		}
		if e.Email == email || e.EmployeeIdentifier == identifier {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

// Create stores a new employee under a fresh id.
func (d *Directory) Create(ctx context.Context, e model.Employee) (*model.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.employees {
		if existing.Email == e.Email || existing.EmployeeIdentifier == e.EmployeeIdentifier {
			return nil, &model.ConflictError{Message: "employee with this email or identifier already exists"}
		}
	}

	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now
	d.employees[e.ID] = &e

	cp := e
	return &cp, nil
}

// List returns one page of employees, newest first, plus the total count.
func (d *Directory) List(ctx context.Context, page, limit int) ([]model.Employee, int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := []model.Employee{}
	for _, e := range d.employees {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Employee{}, len(all), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

// Update rewrites an existing employee.
func (d *Directory) Update(ctx context.Context, e model.Employee) (*model.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.employees[e.ID]
	if !ok {
		return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}

	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	d.employees[e.ID] = &e

	cp := e
	return &cp, nil
}

// Delete removes an employee.
func (d *Directory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.employees[id]; !ok {
		return &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}
	delete(d.employees, id)
	return nil
}
