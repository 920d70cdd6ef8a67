package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"attendance.service/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(attendance handler.AttendanceService, employees handler.EmployeeService) *mux.Router {
	attendanceHandler := handler.AttendanceHandler{Service: attendance}
	employeeHandler := handler.EmployeeHandler{Service: employees}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/attendance", attendanceHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/attendance", attendanceHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/reports/attendance/daily", attendanceHandler.DailyReport).Methods(http.MethodGet)

	api.HandleFunc("/employees", employeeHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/employees", employeeHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/employees/{id}", employeeHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
