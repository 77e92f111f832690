package config

import (
	"time"

	"sessioncli/pkg/contracts"
)

// Application constants
const (
	AppName    = "Session Reports"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable (SESSIONCLI_*).
	EnvPrefix = "SESSIONCLI"

	// DateLayout is the calendar date format used in configuration and reports.
	DateLayout = "2006-01-02"
)

// Workbook sheet names
const (
	SheetUserData    = "user_data"
	SheetSessionData = "session_data"
	SheetSessionSum  = "session_sum"
	SheetEventData   = "event_data"
)

// SheetOrder lists the workbook sheets in load order.
var SheetOrder = []string{
	SheetUserData,
	SheetSessionData,
	SheetSessionSum,
	SheetEventData,
}

// Report identifiers, in the order the entry point runs them.
const (
	ReportUserSessions  = "user_sessions"
	ReportRowCount      = "row_count"
	ReportColumnRatio   = "column_ratio"
	ReportVisitorsChart = "visitors_chart"
	ReportEventPayload  = "event_payload"
)

// ReportOrder lists every report identifier in execution order.
var ReportOrder = []string{
	ReportUserSessions,
	ReportRowCount,
	ReportColumnRatio,
	ReportVisitorsChart,
	ReportEventPayload,
}

// Fixed output file names
const (
	UserSessionFileName = "UserSessionData.csv"
	RowCountFileName    = "RowCount.csv"
	ColumnRatioFileName = "ColumnRatio.csv"
	EventDataFileName   = "event_data.csv"
)

// Report defaults
const (
	DefaultExperiment = 10000
	DefaultDateFrom   = "2021-05-03"
	DefaultDateTo     = "2021-05-09"
)

// Chart defaults
const (
	ViewerSystem  = "system"
	ViewerBrowser = "browser"
	ViewerNone    = "none"

	DefaultChartWidth      = 1024
	DefaultChartHeight     = 600
	DefaultChartDisplayFor = 30 * time.Second
)

// Input sources
const (
	SourceXLSX   = "xlsx"
	SourceGSheet = "gsheet"
)
