package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"sessioncli/internal/config"
	"sessioncli/pkg/contracts/domain"
)

// Table is a header row plus string records, the unit every report is
// written as.
type Table struct {
	Headers []string
	Records [][]string
}

// UserSessionTable lays out the filtered sessions with a leading row index.
func UserSessionTable(rows []domain.UserSession) Table {
	t := Table{
		Headers: []string{"Sl.no", "visitor_id", "session_id", "country", "event_date", "signup_start"},
		Records: make([][]string, 0, len(rows)),
	}
	for i, r := range rows {
		t.Records = append(t.Records, []string{
			strconv.Itoa(i),
			formatInt(r.VisitorID),
			formatInt(r.SessionID),
			r.Country,
			formatDate(r.EventDate),
			strconv.Itoa(r.SignupStart),
		})
	}
	return t
}

// RowCountTable lays out the daily flag counts, one row per date.
func RowCountTable(counts []domain.DailyFlagCount) Table {
	t := Table{
		Headers: append([]string{"event_date"}, domain.DailyFlags...),
		Records: make([][]string, 0, len(counts)),
	}
	for _, c := range counts {
		record := []string{formatDate(c.EventDate)}
		for _, flag := range domain.DailyFlags {
			record = append(record, formatInt(c.Counts[flag]))
		}
		t.Records = append(t.Records, record)
	}
	return t
}

// ColumnRatioTable lays out the ratio table with an unnamed row index column.
// Undefined cells are empty.
func ColumnRatioTable(table *domain.RatioTable) Table {
	t := Table{
		Headers: append([]string{""}, table.Columns...),
		Records: make([][]string, 0, len(table.Rows)),
	}
	for i, row := range table.Rows {
		record := []string{strconv.Itoa(i)}
		for _, v := range row {
			record = append(record, formatOptionalFloat(v))
		}
		t.Records = append(t.Records, record)
	}
	return t
}

// PayloadTable lays out the expanded payload rows.
func PayloadTable(rows []domain.PayloadRow) Table {
	t := Table{
		Headers: []string{"evnt_ts", "visitor_id", "payload_key", "payload_val"},
		Records: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Records = append(t.Records, []string{
			formatTimestamp(r.EventTS),
			formatInt(r.VisitorID),
			r.Key,
			r.Value,
		})
	}
	return t
}

// ReportExporter writes each report to its fixed file name.
type ReportExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
}

// NewReportExporter creates an exporter writing into paths.
func NewReportExporter(csvWriter *CSVWriter, paths *config.Paths) *ReportExporter {
	return &ReportExporter{csvWriter: csvWriter, paths: paths}
}

// ExportUserSessions writes UserSessionData.csv and returns its path.
func (e *ReportExporter) ExportUserSessions(rows []domain.UserSession) (string, error) {
	return e.write(e.paths.UserSessionCSV, UserSessionTable(rows))
}

// ExportRowCount writes RowCount.csv and returns its path.
func (e *ReportExporter) ExportRowCount(counts []domain.DailyFlagCount) (string, error) {
	return e.write(e.paths.RowCountCSV, RowCountTable(counts))
}

// ExportColumnRatio writes ColumnRatio.csv and returns its path.
func (e *ReportExporter) ExportColumnRatio(table *domain.RatioTable) (string, error) {
	return e.write(e.paths.ColumnRatioCSV, ColumnRatioTable(table))
}

// ExportPayload writes event_data.csv and returns its path.
func (e *ReportExporter) ExportPayload(rows []domain.PayloadRow) (string, error) {
	return e.write(e.paths.EventDataCSV, PayloadTable(rows))
}

func (e *ReportExporter) write(path string, t Table) (string, error) {
	if err := e.csvWriter.WriteSimpleCSV(path, t.Headers, t.Records); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// PrintTable writes t as aligned text columns under an optional title line.
func PrintTable(out io.Writer, title string, t Table) error {
	if title != "" {
		if _, err := fmt.Fprintln(out, title); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t")+"\t")
	for _, record := range t.Records {
		fmt.Fprintln(tw, strings.Join(record, "\t")+"\t")
	}
	return tw.Flush()
}
