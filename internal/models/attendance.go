package models

// AttendanceEntry marks one student on one sheet.
type AttendanceEntry struct {
	StudentID string `json:"studentId"`
	Present   bool   `json:"present"`
}

// AttendanceRecord holds the presence list for one class on one date.
// At most one record exists per (classId, date) pair; the store enforces the
// key through find-or-create at save time.
type AttendanceRecord struct {
	ID      string            `json:"id"`
	ClassID string            `json:"classId"`
	Date    string            `json:"date"` // ISO date, e.g. 2026-08-31
	Records []AttendanceEntry `json:"records"`
}

// AttendanceDateLayout is the wire format for sheet dates.
const AttendanceDateLayout = "2006-01-02"
