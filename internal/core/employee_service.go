package core

import (
	"context"
	"fmt"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
)

const msgEmployeeExists = "employee with this email or identifier already exists"

// EmployeePage is one page of the employee listing.
type EmployeePage struct {
	Data  []model.Employee `json:"data"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// EmployeeUpdate carries the mutable fields of an employee; nil means keep.
type EmployeeUpdate struct {
	FirstName          *string `json:"firstName"`
	LastName           *string `json:"lastName"`
	Email              *string `json:"email"`
	EmployeeIdentifier *string `json:"employeeIdentifier"`
	PhoneNumber        *string `json:"phoneNumber"`
}

// EmployeeService manages directory entries.
type EmployeeService struct {
	directory repository.EmployeeDirectory
}

func NewEmployeeService(directory repository.EmployeeDirectory) *EmployeeService {
	return &EmployeeService{directory: directory}
}

// Create adds an employee, rejecting duplicate emails and identifiers.
func (s *EmployeeService) Create(ctx context.Context, e model.Employee) (*model.Employee, error) {
	existing, err := s.directory.FindByEmailOrIdentifier(ctx, e.Email, e.EmployeeIdentifier, "")
	if err != nil {
		return nil, fmt.Errorf("checking employee uniqueness: %w", err)
	}
	if existing != nil {
		return nil, &model.ConflictError{Message: msgEmployeeExists}
	}
	return s.directory.Create(ctx, e)
}

// Get returns one employee by id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	employee, err := s.directory.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
	}
	return employee, nil
}

// List returns one page of employees.
func (s *EmployeeService) List(ctx context.Context, page, limit int) (*EmployeePage, error) {
	data, total, err := s.directory.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &EmployeePage{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// Update applies a partial update, re-checking email/identifier uniqueness
// against other employees.
func (s *EmployeeService) Update(ctx context.Context, id string, update EmployeeUpdate) (*model.Employee, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		employee.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		employee.LastName = *update.LastName
	}
	if update.Email != nil {
		employee.Email = *update.Email
	}
	if update.EmployeeIdentifier != nil {
		employee.EmployeeIdentifier = *update.EmployeeIdentifier
	}
	if update.PhoneNumber != nil {
		employee.PhoneNumber = *update.PhoneNumber
	}

	if update.Email != nil || update.EmployeeIdentifier != nil {
		existing, err := s.directory.FindByEmailOrIdentifier(ctx, employee.Email, employee.EmployeeIdentifier, id)
		if err != nil {
			return nil, fmt.Errorf("checking employee uniqueness: %w", err)
		}
		if existing != nil {
			return nil, &model.ConflictError{Message: msgEmployeeExists}
		}
	}

	return s.directory.Update(ctx, *employee)
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	return s.directory.Delete(ctx, id)
}
