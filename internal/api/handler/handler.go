package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"attendance.service/internal/core/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AttendanceService is what the attendance handlers need from the core.
type AttendanceService interface {
	Record(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error)
	List(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error)
	DailyReport(ctx context.Context, date string) ([]model.ReportRow, error)
}

// AttendanceHandler serves the attendance and report routes.
type AttendanceHandler struct {
	Service AttendanceService
}

type recordAttendanceRequest struct {
	Type       model.EventType `json:"type"`
	EmployeeID string          `json:"employeeId"`
}

// Record handles POST /attendance.
func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		respondMessage(w, http.StatusBadRequest, `type must be "arrival" or "departure"`)
		return
	}
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		respondMessage(w, http.StatusBadRequest, "employeeId must be a valid UUID")
		return
	}

	record, err := h.Service.Record(r.Context(), req.EmployeeID, req.Type)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

// List handles GET /attendance with optional date and employeeId filters.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	employeeID := r.URL.Query().Get("employeeId")

	if date != "" && !validDate(date) {
		respondMessage(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		return
	}
	if employeeID != "" {
		if _, err := uuid.Parse(employeeID); err != nil {
			respondMessage(w, http.StatusBadRequest, "employeeId must be a valid UUID")
			return
		}
	}

	records, err := h.Service.List(r.Context(), date, employeeID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// DailyReport handles GET /reports/attendance/daily. The date defaults to
// today (UTC).
func (h *AttendanceHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(model.DateFormat)
	}
	if !validDate(date) {
		respondMessage(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		return
	}

	report, err := h.Service.DailyReport(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func validDate(date string) bool {
	_, err := time.Parse(model.DateFormat, date)
	return err == nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
}

// respondError maps the domain error taxonomy onto HTTP statuses. A missing
// arrival is a bad request rather than a not-found: the resource addressed
// by the call is the employee's day, which the caller can still create.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *model.NotFoundError
	var conflict *model.ConflictError

	switch {
	case errors.As(err, &notFound):
		status := http.StatusNotFound
		if notFound.Message == model.MsgNoArrival {
			status = http.StatusBadRequest
		}
		respondMessage(w, status, notFound.Message)
	case errors.As(err, &conflict):
		respondMessage(w, http.StatusConflict, conflict.Message)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled service error")
		respondMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
