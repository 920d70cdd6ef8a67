package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attendance.service/internal/api"
	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUUID = "1b671a64-40d5-491e-99b0-da01ff1f3341"

type stubAttendanceService struct {
	record func(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error)
	list   func(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error)
	report func(ctx context.Context, date string) ([]model.ReportRow, error)
}

func (s *stubAttendanceService) Record(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error) {
	return s.record(ctx, employeeID, event)
}

func (s *stubAttendanceService) List(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
	return s.list(ctx, date, employeeID)
}

func (s *stubAttendanceService) DailyReport(ctx context.Context, date string) ([]model.ReportRow, error) {
	return s.report(ctx, date)
}

type stubEmployeeService struct {
	create func(ctx context.Context, e model.Employee) (*model.Employee, error)
	get    func(ctx context.Context, id string) (*model.Employee, error)
}

func (s *stubEmployeeService) Create(ctx context.Context, e model.Employee) (*model.Employee, error) {
	return s.create(ctx, e)
}
func (s *stubEmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	return s.get(ctx, id)
}
func (s *stubEmployeeService) List(ctx context.Context, page, limit int) (*core.EmployeePage, error) {
	return &core.EmployeePage{Data: []model.Employee{}, Page: page, Limit: limit}, nil
}
func (s *stubEmployeeService) Update(ctx context.Context, id string, update core.EmployeeUpdate) (*model.Employee, error) {
	return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
}
func (s *stubEmployeeService) Delete(ctx context.Context, id string) error {
	return nil
}

func okEmployeeService() *stubEmployeeService {
	return &stubEmployeeService{
		create: func(ctx context.Context, e model.Employee) (*model.Employee, error) {
			e.ID = validUUID
			return &e, nil
		},
		get: func(ctx context.Context, id string) (*model.Employee, error) {
			return nil, &model.NotFoundError{Message: model.MsgEmployeeNotFound}
		},
	}
}

func serve(t *testing.T, attendance *stubAttendanceService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := api.NewRouter(attendance, okEmployeeService())

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecordAttendance_Created(t *testing.T) {
	attendance := &stubAttendanceService{
		record: func(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error) {
			require.Equal(t, validUUID, employeeID)
			require.Equal(t, model.EventArrival, event)
			return &model.AttendanceRecord{
				ID:          "rec-1",
				EmployeeID:  employeeID,
				Date:        "2025-02-08",
				ArrivalTime: "09:00:00",
			}, nil
		},
	}

	rec := serve(t, attendance, http.MethodPost, "/api/v1/attendance",
		`{"type":"arrival","employeeId":"`+validUUID+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got model.AttendanceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "09:00:00", got.ArrivalTime)
	assert.Nil(t, got.DepartureTime)
}

func TestRecordAttendance_Validation(t *testing.T) {
	attendance := &stubAttendanceService{
		record: func(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error) {
			t.Fatal("service must not be called for invalid requests")
			return nil, nil
		},
	}

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"unknown type", `{"type":"lunch","employeeId":"` + validUUID + `"}`},
		{"bad uuid", `{"type":"arrival","employeeId":"nope"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, attendance, http.MethodPost, "/api/v1/attendance", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRecordAttendance_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unknown employee", &model.NotFoundError{Message: model.MsgEmployeeNotFound}, http.StatusNotFound, model.MsgEmployeeNotFound},
		{"duplicate arrival", &model.ConflictError{Message: model.MsgArrivalRecorded}, http.StatusConflict, model.MsgArrivalRecorded},
		{"no arrival yet", &model.NotFoundError{Message: model.MsgNoArrival}, http.StatusBadRequest, model.MsgNoArrival},
		{"duplicate departure", &model.ConflictError{Message: model.MsgDepartureRecorded}, http.StatusConflict, model.MsgDepartureRecorded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attendance := &stubAttendanceService{
				record: func(ctx context.Context, employeeID string, event model.EventType) (*model.AttendanceRecord, error) {
					return nil, tc.err
				},
			}
			rec := serve(t, attendance, http.MethodPost, "/api/v1/attendance",
				`{"type":"departure","employeeId":"`+validUUID+`"}`)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var resp struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantMsg, resp.Message)
		})
	}
}

func TestListAttendance_PassesFilters(t *testing.T) {
	attendance := &stubAttendanceService{
		list: func(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
			assert.Equal(t, "2025-02-08", date)
			assert.Equal(t, validUUID, employeeID)
			return []model.AttendanceRecord{{ID: "rec-1", Date: date}}, nil
		},
	}

	rec := serve(t, attendance, http.MethodGet,
		"/api/v1/attendance?date=2025-02-08&employeeId="+validUUID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.AttendanceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestListAttendance_InvalidDate(t *testing.T) {
	attendance := &stubAttendanceService{
		list: func(ctx context.Context, date, employeeID string) ([]model.AttendanceRecord, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := serve(t, attendance, http.MethodGet, "/api/v1/attendance?date=02-08-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyReport_ReturnsRows(t *testing.T) {
	attendance := &stubAttendanceService{
		report: func(ctx context.Context, date string) ([]model.ReportRow, error) {
			return []model.ReportRow{{
				AttendanceRecord: model.AttendanceRecord{Date: date, ArrivalTime: "08:45:00"},
				EmployeeName:     "Ana Pop",
				EmployeeEmail:    "ana@example.com",
			}}, nil
		},
	}

	rec := serve(t, attendance, http.MethodGet, "/api/v1/reports/attendance/daily?date=2025-02-08", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.ReportRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Pop", got[0].EmployeeName)
}

func TestCreateEmployee_Created(t *testing.T) {
	rec := serve(t, &stubAttendanceService{}, http.MethodPost, "/api/v1/employees",
		`{"firstName":"Ana","lastName":"Pop","email":"ana@example.com","employeeIdentifier":"EMP-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateEmployee_InvalidEmail(t *testing.T) {
	rec := serve(t, &stubAttendanceService{}, http.MethodPost, "/api/v1/employees",
		`{"firstName":"Ana","lastName":"Pop","email":"not-an-email","employeeIdentifier":"EMP-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_NotFound(t *testing.T) {
	rec := serve(t, &stubAttendanceService{}, http.MethodGet, "/api/v1/employees/"+validUUID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(t, &stubAttendanceService{}, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
