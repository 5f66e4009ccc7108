package student

import (
	"strings"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
)

// AttendanceStatus is the outcome of a roll call.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// IsValid reports whether s is one of the known statuses.
func (s AttendanceStatus) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusLate
}

// ParseAttendanceStatus accepts any letter case and surrounding whitespace.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	st := AttendanceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.ErrInvalidAttendanceStatus
	}
	return st, nil
}

// AttendanceRecord is one roll call. An empty Subject covers the whole day.
type AttendanceRecord struct {
	Date    time.Time
	Status  AttendanceStatus
	Subject string
}

// WholeDay reports whether the record is not scoped to a subject.
func (r AttendanceRecord) WholeDay() bool { return r.Subject == "" }

// Validate checks the status and date.
func (r AttendanceRecord) Validate() error {
	if !r.Status.IsValid() {
		return shared.ErrInvalidAttendanceStatus
	}
	if r.Date.IsZero() {
		return shared.Validationf("attendance", "Validate", "date is required")
	}
	return nil
}

// NewAttendanceRecord builds and validates a record.
func NewAttendanceRecord(date time.Time, status AttendanceStatus, subject string) (AttendanceRecord, error) {
	r := AttendanceRecord{Date: date, Status: status, Subject: strings.TrimSpace(subject)}
	if err := r.Validate(); err != nil {
		return AttendanceRecord{}, err
	}
	return r, nil
}
