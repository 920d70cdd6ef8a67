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

const msgEmployeeExists = "employee with this email or identifier already exists"

// EmployeeRepository is the PostgreSQL-backed employee directory.
type EmployeeRepository struct {
	DB *sql.DB
}

// NewEmployeeRepository creates a new directory over the given connection pool.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

const employeeColumns = `id, first_name, last_name, email, employee_identifier, phone_number, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.EmployeeIdentifier,
		&e.PhoneNumber, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Resolve fetches one employee by id, nil when absent.
func (r *EmployeeRepository) Resolve(ctx context.Context, id string) (*model.Employee, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", id))

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindByEmailOrIdentifier returns a matching employee other than excludeID,
// or nil when no other employee uses the email or identifier.
func (r *EmployeeRepository) FindByEmailOrIdentifier(ctx context.Context, email, identifier, excludeID string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + `
              FROM employees
              WHERE (email = $1 OR employee_identifier = $2)
                AND ($3 = '' OR id <> NULLIF($3, '')::uuid)
              LIMIT 1`

	e, err := scanEmployee(r.DB.QueryRowContext(ctx, query, email, identifier, excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new employee, mapping the unique-identifier constraint to
// a ConflictError.
func (r *EmployeeRepository) Create(ctx context.Context, e model.Employee) (*model.Employee, error) {
	query := `INSERT INTO employees (first_name, last_name, email, employee_identifier, phone_number)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING ` + employeeColumns

	created, err := scanEmployee(r.DB.QueryRowContext(ctx, query,
		e.FirstName, e.LastName, e.Email, e.EmployeeIdentifier, e.PhoneNumber))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &model.ConflictError{Message: msgEmployeeExists}
		}
		return nil, err
	}
	return created, nil
}

// List returns one page of employees, newest first, plus the total count.
func (r *EmployeeRepository) List(ctx context.Context, page, limit int) ([]model.Employee, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + `
              FROM employees
              ORDER BY created_at DESC
              LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, *e)
	}
	return employees, total, rows.Err()
}

// Update rewrites all mutable columns of an existing employee.
func (r *EmployeeRepository) Update(ctx context.Context, e model.Employee) (*model.Employee, error) {
	query := `UPDATE employees
              SET first_name = $1, last_name = $2, email = $3,
                  employee_identifier = $4, phone_number = $5, updated_at = now()
              WHERE id = $6
              RETURNING ` + employeeColumns

	updated, err := scanEmployee(r.DB.QueryRowContext(ctx, query,
		e.FirstName, e.LastName, e.Email, e.EmployeeIdentifier, e.PhoneNumber, e.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &model.ConflictError{Message: msgEmployeeExists}
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an employee and, through the cascade, their attendance rows.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}
	return nil
}
