package repository

import (
	"context"
	"database/sql"
	"errors"

	"attendance.service/internal/core/model"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const pgUniqueViolation = "23505"

// AttendanceRepository is the ledger implementation for PostgreSQL. The
// uniqueness invariant is carried by the UNIQUE (employee_id, date)
// constraint, and the departure transition by a conditional update, so
// concurrent writers for the same key are arbitrated by the database.
type AttendanceRepository struct {
	DB *sql.DB
}

// NewAttendanceRepository creates a new ledger over the given connection pool.
func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

const recordColumns = `id, employee_id, to_char(date, 'YYYY-MM-DD'),
       to_char(arrival_time, 'HH24:MI:SS'), to_char(departure_time, 'HH24:MI:SS'),
       created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	var departure sql.NullString
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ArrivalTime, &departure, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if departure.Valid {
		rec.DepartureTime = &departure.String
	}
	return &rec, nil
}

// FindRecord fetches the record for one (employee, day) key.
func (r *AttendanceRepository) FindRecord(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	query := `SELECT ` + recordColumns + `
              FROM attendances
              WHERE employee_id = $1 AND date = $2`

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, employeeID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateArrival inserts the day's record, relying on the composite unique
// constraint to reject a second arrival for the same key.
func (r *AttendanceRepository) CreateArrival(ctx context.Context, employeeID, date, arrival string) (*model.AttendanceRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	query := `INSERT INTO attendances (employee_id, date, arrival_time)
              VALUES ($1, $2::date, $3::time)
              RETURNING ` + recordColumns

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, employeeID, date, arrival))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &model.ConflictError{Message: model.MsgArrivalRecorded}
		}
		return nil, err
	}
	return rec, nil
}

// SetDeparture sets the departure time only if it is still unset. A zero-row
// update is disambiguated with a follow-up read: existing record means the
// departure was already set, no record means no arrival happened today.
func (r *AttendanceRepository) SetDeparture(ctx context.Context, employeeID, date, departure string) (*model.AttendanceRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	query := `UPDATE attendances
              SET departure_time = $1::time,
                  updated_at = now()
              WHERE employee_id = $2 AND date = $3 AND departure_time IS NULL
              RETURNING ` + recordColumns

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, departure, employeeID, date))
	if errors.Is(err, sql.ErrNoRows) {
		existing, ferr := r.FindRecord(ctx, employeeID, date)
		if ferr != nil {
			return nil, ferr
		}
		if existing != nil {
			return nil, &model.ConflictError{Message: model.MsgDepartureRecorded}
		}
		return nil, &model.NotFoundError{Message: model.MsgNoArrival}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListForDate lists records newest-first, optionally filtered by date and
// employee. NULLIF keeps the casts valid for empty filters; Postgres does not
// guarantee OR short-circuit order.
func (r *AttendanceRepository) ListForDate(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
	query := `SELECT ` + recordColumns + `
              FROM attendances
              WHERE ($1 = '' OR date = NULLIF($1, '')::date)
                AND ($2 = '' OR employee_id = NULLIF($2, '')::uuid)
              ORDER BY date DESC, arrival_time DESC`

	rows, err := r.DB.QueryContext(ctx, query, date, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DailyReport returns a single day's records in arrival order with the
// employee's display fields joined in.
func (r *AttendanceRepository) DailyReport(ctx context.Context, date string) ([]model.ReportRow, error) {
	query := `SELECT a.id, a.employee_id, to_char(a.date, 'YYYY-MM-DD'),
                     to_char(a.arrival_time, 'HH24:MI:SS'), to_char(a.departure_time, 'HH24:MI:SS'),
                     a.created_at, a.updated_at,
                     e.first_name, e.last_name, e.email
              FROM attendances a
              JOIN employees e ON e.id = a.employee_id
              WHERE a.date = $1::date
              ORDER BY a.arrival_time ASC`

	rows, err := r.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := []model.ReportRow{}
	for rows.Next() {
		var row model.ReportRow
		var departure sql.NullString
		var firstName, lastName string
		err := rows.Scan(&row.ID, &row.EmployeeID, &row.Date, &row.ArrivalTime, &departure,
			&row.CreatedAt, &row.UpdatedAt, &firstName, &lastName, &row.EmployeeEmail)
		if err != nil {
			return nil, err
		}
		if departure.Valid {
			row.DepartureTime = &departure.String
		}
		row.EmployeeName = firstName + " " + lastName
		report = append(report, row)
	}
	return report, rows.Err()
}
