package model

import (
	"time"
)

// EventType is the kind of attendance event an employee can record.
type EventType string

const (
	EventArrival   EventType = "arrival"
	EventDeparture EventType = "departure"
)

// Valid reports whether t is one of the two supported event kinds.
func (t EventType) Valid() bool {
	return t == EventArrival || t == EventDeparture
}

// Date and time-of-day formats used across the service. Dates are resolved
// against the UTC day boundary, so an event lands on the UTC calendar day it
// was recorded on.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04:05"
)

// AttendanceRecord is one row of the attendance ledger: a single employee's
// presence for a single calendar day. At most one record exists per
// (EmployeeID, Date), and DepartureTime is write-once.
type AttendanceRecord struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	Date          string    `json:"date"`
	ArrivalTime   string    `json:"arrivalTime"`
	DepartureTime *string   `json:"departureTime"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Employee is the directory entry referenced by attendance records.
type Employee struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	EmployeeIdentifier string    `json:"employeeIdentifier"`
	PhoneNumber        string    `json:"phoneNumber"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DisplayName is the name used in notifications and reports.
func (e Employee) DisplayName() string {
	return e.FirstName + " " + e.LastName
}

// NotificationJob is the unit of work handed to the notification dispatcher
// after a successful ledger write. It carries everything the sender needs, so
// workers never have to read the ledger back.
type NotificationJob struct {
	EmployeeID    string  `json:"employeeId"`
	EmployeeEmail string  `json:"employeeEmail"`
	EmployeeName  string  `json:"employeeName"`
	Date          string  `json:"date"`
	ArrivalTime   string  `json:"arrivalTime"`
	DepartureTime *string `json:"departureTime"`
}

// ReportRow is one entry of the daily report projection: the attendance
// record joined with the employee's display fields.
type ReportRow struct {
	AttendanceRecord
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
}
