package domain

import (
	"time"
)

// UserRecord is one row of the user_data sheet.
type UserRecord struct {
	VisitorID        int64     `json:"visitor_id" validate:"gte=0"`
	SessionID        int64     `json:"session_id" validate:"gte=0"`
	ExperimentNumber int64     `json:"experiment_number"`
	Country          string    `json:"country"`
	EventDate        time.Time `json:"event_date" validate:"required"`
	SignupStart      int       `json:"signup_start" validate:"oneof=0 1"`
}

// SessionRecord is one row of the session_data sheet. SessionStart,
// SessionEnd and PageVisited are optional in the source.
type SessionRecord struct {
	SessionID      int64     `json:"session_id" validate:"gte=0"`
	SessionStart   time.Time `json:"session_start"`
	SessionEnd     time.Time `json:"session_end"`
	PageVisited    string    `json:"page_visited"`
	IsRP           int       `json:"is_rp" validate:"oneof=0 1"`
	SignupComplete int       `json:"signup_complete" validate:"oneof=0 1"`
	ActiveAfter7d  int       `json:"active_after_7d" validate:"oneof=0 1"`
}

// SessionRow is a user record joined with one of its sessions.
type SessionRow struct {
	User    UserRecord    `json:"user"`
	Session SessionRecord `json:"session"`
}

// Flag returns the value of a binary flag column by name. The second
// result is false for unknown names.
func (r SessionRow) Flag(name string) (int, bool) {
	switch name {
	case FlagIsRP:
		return r.Session.IsRP, true
	case FlagSignupStart:
		return r.User.SignupStart, true
	case FlagSignupComplete:
		return r.Session.SignupComplete, true
	case FlagActiveAfter7d:
		return r.Session.ActiveAfter7d, true
	}
	return 0, false
}

// Binary flag column names counted per day.
const (
	FlagIsRP           = "is_rp"
	FlagSignupStart    = "signup_start"
	FlagSignupComplete = "signup_complete"
	FlagActiveAfter7d  = "active_after_7d"
)

// DailyFlags lists the flag columns in report order.
var DailyFlags = []string{FlagIsRP, FlagSignupStart, FlagSignupComplete, FlagActiveAfter7d}

// EventRecord is one row of the event_data sheet.
type EventRecord struct {
	EventTS       time.Time `json:"evnt_ts" validate:"required"`
	VisitorID     int64     `json:"visitor_id" validate:"gte=0"`
	PayloadColumn string    `json:"payload_column"`
}

// SummaryTable is the session_sum sheet: successive cumulative counts.
type SummaryTable struct {
	Columns []string    `json:"columns" validate:"required,min=1"`
	Rows    [][]float64 `json:"rows" validate:"required,min=1"`
}

// Clone returns a deep copy so derived tables never alias the source.
func (s *SummaryTable) Clone() *SummaryTable {
	if s == nil {
		return nil
	}
	out := &SummaryTable{
		Columns: append([]string(nil), s.Columns...),
		Rows:    make([][]float64, len(s.Rows)),
	}
	for i, row := range s.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}
