package domain

import (
	"time"
)

// UserSession is one projected row of the filtered session report.
type UserSession struct {
	VisitorID   int64     `json:"visitor_id"`
	SessionID   int64     `json:"session_id"`
	Country     string    `json:"country"`
	EventDate   time.Time `json:"event_date"`
	SignupStart int       `json:"signup_start"`
}

// DailyFlagCount holds, for one event date, the number of joined rows
// where each flag equals 1. Counts is keyed by flag column name.
type DailyFlagCount struct {
	EventDate time.Time        `json:"event_date"`
	Counts    map[string]int64 `json:"counts"`
}

// RatioTable is the summary table with the appended ratio row. Cells
// that have no defined value are nil.
type RatioTable struct {
	Columns []string     `json:"columns"`
	Rows    [][]*float64 `json:"rows"`
}

// VisitorPoint is one bar of the visitor chart.
type VisitorPoint struct {
	EventDate time.Time `json:"event_date"`
	Count     int64     `json:"count"`
}

// VisitorSeries is the data behind the visitor chart, in ascending date order.
type VisitorSeries struct {
	Title  string         `json:"title"`
	XLabel string         `json:"x_label"`
	YLabel string         `json:"y_label"`
	Points []VisitorPoint `json:"points"`
}

// PayloadRow is one expanded key/value pair of an event payload.
type PayloadRow struct {
	EventTS   time.Time `json:"evnt_ts"`
	VisitorID int64     `json:"visitor_id"`
	Key       string    `json:"payload_key"`
	Value     string    `json:"payload_val"`
}
