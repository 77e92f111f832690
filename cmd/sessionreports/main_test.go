package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sessioncli/internal/config"
	"sessioncli/internal/report"
)

type fixtureSheet struct {
	name string
	rows [][]interface{}
}

func day(d int) time.Time { return time.Date(2021, 5, d, 0, 0, 0, 0, time.UTC) }

// writeWorkbook saves sheets to an .xlsx file in a temp dir
func writeWorkbook(t *testing.T, sheets ...fixtureSheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "sessions.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func summarySheet() fixtureSheet {
	return fixtureSheet{config.SheetSessionSum, [][]interface{}{
		{"visits", "signups", "actives"},
		{1000, 250, 50},
	}}
}

func eventSheet(payload string) fixtureSheet {
	return fixtureSheet{config.SheetEventData, [][]interface{}{
		{"evnt_ts", "visitor_id", "payload_column"},
		{time.Date(2021, 5, 3, 10, 15, 0, 0, time.UTC), 42, payload},
	}}
}

// writeFixture saves a workbook with the four sheets; payload fills the
// first event row
func writeFixture(t *testing.T, payload string) string {
	t.Helper()

	return writeWorkbook(t,
		fixtureSheet{config.SheetUserData, [][]interface{}{
			{"visitor_id", "session_id", "experiment_number", "country", "event_date", "signup_start"},
			{1, 100, 10000, "IN", day(3), 1},
			{2, 101, 10000, "US", day(3), 1},
			{3, 102, 20000, "DE", day(4), 1},
		}},
		fixtureSheet{config.SheetSessionData, [][]interface{}{
			{"session_id", "is_rp", "signup_complete", "active_after_7d"},
			{100, 1, 1, 1},
			{101, 1, 0, 1},
			{102, 0, 0, 0},
		}},
		summarySheet(),
		eventSheet(payload),
	)
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	f, err := parseFlags([]string{"-out", "reports", "-viewer", "none", "-only", "row_count, event_payload", "book.xlsx"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx", f.input)

	cfg := config.Default()
	f.apply(cfg)
	assert.Equal(t, "book.xlsx", cfg.Input.Path)
	assert.Equal(t, "reports", cfg.Paths.OutputDir)
	assert.Equal(t, config.ViewerNone, cfg.Chart.Viewer)
	assert.Equal(t, []string{config.ReportRowCount, config.ReportEventPayload}, cfg.Reports.Only)

	_, err = parseFlags([]string{"-input", "a.xlsx", "b.xlsx"}, &stderr)
	require.Error(t, err)

	_, err = parseFlags([]string{"a.xlsx", "b.xlsx"}, &stderr)
	require.Error(t, err)
}

func TestRun_AllReports(t *testing.T) {
	input := writeFixture(t, "a=1&b=2&c=3")
	out := filepath.Join(t.TempDir(), "out")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", out, "-viewer", "none", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{
		config.UserSessionFileName,
		config.RowCountFileName,
		config.ColumnRatioFileName,
		config.EventDataFileName,
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	payload, err := os.ReadFile(filepath.Join(out, config.EventDataFileName))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(payload), "\n"))

	assert.Contains(t, stdout.String(), "Row Count of each column on every day")
	assert.Contains(t, stdout.String(), "Summary")
	assert.Contains(t, stdout.String(), "Sheets")
	assert.NotContains(t, stdout.String(), "cannot read sheet")
	assert.Contains(t, stderr.String(), `"run_id"`)
}

func TestRun_ReportContents(t *testing.T) {
	input := writeWorkbook(t,
		fixtureSheet{config.SheetUserData, [][]interface{}{
			{"visitor_id", "session_id", "experiment_number", "country", "event_date", "signup_start"},
			{1, 100, 10000, "IN", day(5), 1},
			{2, 101, 10000, "US", day(3), 1},
			{3, 102, 10000, "DE", day(9), 1},
			{4, 103, 10000, "FR", day(10), 1},
			{5, 104, 20000, "UK", day(4), 1},
			{6, 105, 10000, "BR", day(3), 0},
		}},
		fixtureSheet{config.SheetSessionData, [][]interface{}{
			{"session_id", "is_rp", "signup_complete", "active_after_7d"},
			{100, 1, 1, 1},
			{101, 1, 1, 1},
			{102, 1, 1, 0},
			{103, 1, 1, 1},
			{104, 1, 1, 1},
			{105, 1, 0, 1},
		}},
		summarySheet(),
		eventSheet("a=1"),
	)
	out := filepath.Join(t.TempDir(), "out")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", out, "-viewer", "none", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	// Day 10 is past the range, day 9 is the inclusive upper bound, and
	// experiment 20000 is excluded. Rows are sorted by date, stable within a day.
	sessions, err := os.ReadFile(filepath.Join(out, config.UserSessionFileName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Sl.no,visitor_id,session_id,country,event_date,signup_start",
		"0,2,101,US,2021-05-03,1",
		"1,6,105,BR,2021-05-03,0",
		"2,1,100,IN,2021-05-05,1",
		"3,3,102,DE,2021-05-09,1",
		"",
	}, "\n"), string(sessions))

	// Counts cover every experiment row regardless of date. Day 9 has no
	// active_after_7d row so it is dropped.
	counts, err := os.ReadFile(filepath.Join(out, config.RowCountFileName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"event_date,is_rp,signup_start,signup_complete,active_after_7d",
		"2021-05-03,2,1,1,2",
		"2021-05-05,1,1,1,1",
		"2021-05-10,1,1,1,1",
		"",
	}, "\n"), string(counts))
}

func TestRun_FailingReportExitsNonZero(t *testing.T) {
	input := writeFixture(t, "a=1&bad")
	out := filepath.Join(t.TempDir(), "out")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", out, "-viewer", "none", input}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	// Independent reports were still written
	assert.FileExists(t, filepath.Join(out, config.UserSessionFileName))
	assert.FileExists(t, filepath.Join(out, config.ColumnRatioFileName))
	assert.NoFileExists(t, filepath.Join(out, config.EventDataFileName))

	assert.Contains(t, stderr.String(), `"error_type":"PARSE"`)
	assert.Contains(t, stdout.String(), "failed")
}

func TestRun_Only(t *testing.T) {
	input := writeFixture(t, "a=1")
	out := filepath.Join(t.TempDir(), "out")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-out", out, "-viewer", "none", "-only", "column_ratio", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.FileExists(t, filepath.Join(out, config.ColumnRatioFileName))
	assert.NoFileExists(t, filepath.Join(out, config.UserSessionFileName))
	assert.Contains(t, stdout.String(), "skipped")
}

func TestRun_InvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer

	// No input
	assert.Equal(t, 1, run(context.Background(), []string{"-out", t.TempDir()}, &stdout, &stderr))

	assert.Equal(t, 1, run(context.Background(), []string{"-viewer", "projector", "x.xlsx"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"-nope"}, &stdout, &stderr))
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "sessionreports v"))
}

func TestRun_NotAWorkbook(t *testing.T) {
	var stdout, stderr bytes.Buffer
	input := filepath.Join(t.TempDir(), "sessions.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,b\n"), 0o644))

	code := run(context.Background(), []string{"-out", t.TempDir(), "-viewer", "none", input}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "not an Excel workbook")
}

func TestRun_MissingWorkbook(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.xlsx")

	code := run(context.Background(), []string{"-out", t.TempDir(), "-viewer", "none", missing}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Input validation failed")
}

// sheetErrors reports the load error of each named sheet
type sheetErrors map[string]error

func (s sheetErrors) Err(sheet string) error { return s[sheet] }

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	sheets := sheetErrors{config.SheetEventData: errors.New("cannot read sheet \"event_data\"")}
	result := &report.RunResult{RunID: "run-1"}
	state := report.NewStepState(config.ReportRowCount, "Row count")
	state.Start()
	state.SetRows(3)
	state.Complete()
	result.States = append(result.States, state)

	require.NoError(t, printSummary(&out, sheets, result))

	lines := strings.Split(out.String(), "\n")
	var sheetLines []string
	for _, line := range lines {
		for _, name := range config.SheetOrder {
			if strings.HasPrefix(strings.TrimSpace(line), name) {
				sheetLines = append(sheetLines, strings.Join(strings.Fields(line), " "))
			}
		}
	}
	assert.Equal(t, []string{
		"user_data loaded",
		"session_data loaded",
		"session_sum loaded",
		`event_data failed cannot read sheet "event_data"`,
	}, sheetLines)
	assert.Contains(t, out.String(), "Summary")
	assert.Contains(t, out.String(), config.ReportRowCount)
}

func TestPrintSummary_NoResult(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSummary(&out, nil, nil))
	assert.Empty(t, out.String())
}
