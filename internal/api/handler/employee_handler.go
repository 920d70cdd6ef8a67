package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// EmployeeService is what the employee handlers need from the core.
type EmployeeService interface {
	Create(ctx context.Context, e model.Employee) (*model.Employee, error)
	Get(ctx context.Context, id string) (*model.Employee, error)
	List(ctx context.Context, page, limit int) (*core.EmployeePage, error)
	Update(ctx context.Context, id string, update core.EmployeeUpdate) (*model.Employee, error)
	Delete(ctx context.Context, id string) error
}

// EmployeeHandler serves the employee directory routes.
type EmployeeHandler struct {
	Service EmployeeService
}

type createEmployeeRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	EmployeeIdentifier string `json:"employeeIdentifier"`
	PhoneNumber        string `json:"phoneNumber"`
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.EmployeeIdentifier == "" {
		respondMessage(w, http.StatusBadRequest, "firstName, lastName and employeeIdentifier are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondMessage(w, http.StatusBadRequest, "email must be a valid address")
		return
	}

	employee, err := h.Service.Create(r.Context(), model.Employee{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		EmployeeIdentifier: req.EmployeeIdentifier,
		PhoneNumber:        req.PhoneNumber,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, employee)
}

// List handles GET /employees with page/limit pagination.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	result, err := h.Service.List(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	employee, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

// Update handles PATCH /employees/{id}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var update core.EmployeeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.Email != nil {
		if _, err := mail.ParseAddress(*update.Email); err != nil {
			respondMessage(w, http.StatusBadRequest, "email must be a valid address")
			return
		}
	}

	employee, err := h.Service.Update(r.Context(), id, update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

// Delete handles DELETE /employees/{id}.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted successfully"})
}

func employeeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondMessage(w, http.StatusBadRequest, "id must be a valid UUID")
		return "", false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
