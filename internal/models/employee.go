package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day stored in a DATE column and rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// EmployeeForm is the raw text of a create/update request, one field per
// form value. Lengths are checked after the format rules.
type EmployeeForm struct {
	ID          string `form:"id"`
	Name        string `form:"name" validate:"max=50"`
	Role        string `form:"role" validate:"max=40"`
	Gender      string `form:"gender" validate:"max=10"`
	DOB         string `form:"dob"`
	Location    string `form:"location" validate:"max=40"`
	Email       string `form:"email" validate:"max=50"`
	Phone       string `form:"phone"`
	JoinDate    string `form:"joinDate"`
	Experience  string `form:"experience"`
	Skills      string `form:"skills"`
	Achievement string `form:"achievement"`
}

type Employee struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Gender       string  `json:"gender"`
	DOB          Date    `json:"dob"`
	Location     string  `json:"location"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	JoinDate     Date    `json:"joinDate"`
	Experience   int     `json:"experience"`
	Skills       string  `json:"skills"`
	Achievement  string  `json:"achievement"`
	ProfileImage *string `json:"profileImage"`
}

type EmployeeSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
}

type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)
