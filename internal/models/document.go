package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the root record holding all application data. It is loaded at
// startup and rewritten wholesale on every mutation; last write wins. The
// JSON field names reproduce the shape the original frontend persisted, so
// exported files from either system import cleanly into the other.
type Document struct {
	Users         []User             `json:"users"`
	Students      []Student          `json:"students"`
	Teachers      []Teacher          `json:"teachers"`
	Classes       []Class            `json:"classes"`
	Subjects      []Subject          `json:"subjects"`
	Attendance    []AttendanceRecord `json:"attendance"`
	Grades        []GradeEntry       `json:"grades"`
	Announcements []Announcement     `json:"announcements"`
	Ratings       []Rating           `json:"ratings"`
	PendingOTP    *PendingOTP        `json:"pendingOtp"`
	LoggedInID    *string            `json:"loggedIn"`
}

// UnmarshalJSON accepts both session encodings for loggedIn: this system
// persists the user id as a string, the original frontend persisted the whole
// user object. Either form decodes to the id reference.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	aux := struct {
		*alias
		LoggedIn json.RawMessage `json:"loggedIn"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.LoggedInID = nil
	raw := bytes.TrimSpace(aux.LoggedIn)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	switch raw[0] {
	case '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		d.LoggedInID = &id
	case '{':
		var user User
		if err := json.Unmarshal(raw, &user); err != nil {
			return err
		}
		if user.ID != "" {
			d.LoggedInID = &user.ID
		}
	default:
		return fmt.Errorf("loggedIn: unsupported JSON value %s", raw)
	}
	return nil
}

// UserByID returns the matching user or nil.
func (d *Document) UserByID(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// UserByEmail returns the matching user or nil.
func (d *Document) UserByEmail(email string) *User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// StudentByID returns the matching student projection or nil.
func (d *Document) StudentByID(id string) *Student {
	for i := range d.Students {
		if d.Students[i].ID == id {
			return &d.Students[i]
		}
	}
	return nil
}

// TeacherByID returns the matching teacher projection or nil.
func (d *Document) TeacherByID(id string) *Teacher {
	for i := range d.Teachers {
		if d.Teachers[i].ID == id {
			return &d.Teachers[i]
		}
	}
	return nil
}

// ClassByID returns the matching class or nil.
func (d *Document) ClassByID(id string) *Class {
	for i := range d.Classes {
		if d.Classes[i].ID == id {
			return &d.Classes[i]
		}
	}
	return nil
}

// SubjectByID returns the matching subject or nil.
func (d *Document) SubjectByID(id string) *Subject {
	for i := range d.Subjects {
		if d.Subjects[i].ID == id {
			return &d.Subjects[i]
		}
	}
	return nil
}

// ClassName resolves a class name, substituting a placeholder for dangling
// references.
func (d *Document) ClassName(id string) string {
	if c := d.ClassByID(id); c != nil {
		return c.Name
	}
	return Placeholder
}

// SubjectName resolves a subject name with a dangling-reference placeholder.
func (d *Document) SubjectName(id string) string {
	if s := d.SubjectByID(id); s != nil {
		return s.Name
	}
	return Placeholder
}

// Placeholder renders in place of a dangling reference.
const Placeholder = "-"
