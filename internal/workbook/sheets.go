package workbook

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/pkg/contracts/domain"
)

var validate = validator.New()

// columnSpec names a column and the header spellings that bind to it
type columnSpec struct {
	name     string
	aliases  []string
	optional bool
}

var (
	userColumns = []columnSpec{
		{name: "visitor_id"},
		{name: "session_id"},
		{name: "experiment_number", aliases: []string{"Experiment Number", "experiment"}},
		{name: "country"},
		{name: "event_date"},
		{name: "signup_start"},
	}
	sessionColumns = []columnSpec{
		{name: "session_id"},
		{name: "session_start", optional: true},
		{name: "session_end", optional: true},
		{name: "page_visited", aliases: []string{"page_Visited"}, optional: true},
		{name: "is_rp"},
		{name: "signup_complete"},
		{name: "active_after_7d"},
	}
	eventColumns = []columnSpec{
		{name: "evnt_ts", aliases: []string{"event_ts"}},
		{name: "visitor_id"},
		{name: "payload_column", aliases: []string{"payload"}},
	}
)

// bindColumns resolves every spec against the header row. Missing optional
// columns map to -1.
func bindColumns(sheet string, h header, specs []columnSpec) (map[string]int, error) {
	cols := make(map[string]int, len(specs))
	for _, spec := range specs {
		idx, ok := h.lookup(append([]string{spec.name}, spec.aliases...)...)
		if !ok {
			if spec.optional {
				cols[spec.name] = -1
				continue
			}
			return nil, reporterrors.NewSchemaError("required column missing", nil).
				WithSheet(sheet).
				WithColumn(spec.name)
		}
		cols[spec.name] = idx
	}
	return cols, nil
}

// rowDecoder decodes cells of one sheet row and remembers the first failure
type rowDecoder struct {
	sheet string
	row   []string
	line  int
	cols  map[string]int
	err   error
}

func (d *rowDecoder) fail(column string, err error) {
	if d.err == nil {
		d.err = reporterrors.NewSchemaError("cannot decode cell", err).
			WithSheet(d.sheet).
			WithColumn(column).
			WithRow(d.line)
	}
}

func (d *rowDecoder) text(column string) string {
	return cell(d.row, d.cols[column])
}

func (d *rowDecoder) integer(column string) int64 {
	v, err := parseInt(d.text(column))
	if err != nil {
		d.fail(column, err)
	}
	return v
}

func (d *rowDecoder) flag(column string) int {
	v, err := parseFlag(d.text(column))
	if err != nil {
		d.fail(column, err)
	}
	return v
}

func (d *rowDecoder) date(column string) time.Time {
	v, err := parseDate(d.text(column))
	if err != nil {
		d.fail(column, err)
	}
	return v
}

func (d *rowDecoder) timestamp(column string) time.Time {
	v, err := parseTime(d.text(column))
	if err != nil {
		d.fail(column, err)
	}
	return v
}

func (d *rowDecoder) optionalTimestamp(column string) time.Time {
	v, err := parseOptionalTime(d.text(column))
	if err != nil {
		d.fail(column, err)
	}
	return v
}

// check runs struct validation on a decoded record
func (d *rowDecoder) check(record interface{}) {
	if d.err != nil {
		return
	}
	if err := validate.Struct(record); err != nil {
		d.err = reporterrors.NewSchemaError("record failed validation", err).
			WithSheet(d.sheet).
			WithRow(d.line)
	}
}

// eachRow binds the header and calls fn for every non-blank data row
func eachRow(sheet string, rows [][]string, specs []columnSpec, fn func(d *rowDecoder)) error {
	if len(rows) == 0 {
		return reporterrors.NewSchemaError("sheet is empty", nil).WithSheet(sheet)
	}
	cols, err := bindColumns(sheet, indexHeader(rows[0]), specs)
	if err != nil {
		return err
	}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		d := &rowDecoder{sheet: sheet, row: row, line: i + 2, cols: cols}
		fn(d)
		if d.err != nil {
			return d.err
		}
	}
	return nil
}

// DecodeUsers decodes the user_data sheet.
func DecodeUsers(rows [][]string) ([]domain.UserRecord, error) {
	var users []domain.UserRecord
	err := eachRow(config.SheetUserData, rows, userColumns, func(d *rowDecoder) {
		u := domain.UserRecord{
			VisitorID:        d.integer("visitor_id"),
			SessionID:        d.integer("session_id"),
			ExperimentNumber: d.integer("experiment_number"),
			Country:          d.text("country"),
			EventDate:        d.date("event_date"),
			SignupStart:      d.flag("signup_start"),
		}
		d.check(u)
		users = append(users, u)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DecodeSessions decodes the session_data sheet.
func DecodeSessions(rows [][]string) ([]domain.SessionRecord, error) {
	var sessions []domain.SessionRecord
	err := eachRow(config.SheetSessionData, rows, sessionColumns, func(d *rowDecoder) {
		s := domain.SessionRecord{
			SessionID:      d.integer("session_id"),
			SessionStart:   d.optionalTimestamp("session_start"),
			SessionEnd:     d.optionalTimestamp("session_end"),
			PageVisited:    d.text("page_visited"),
			IsRP:           d.flag("is_rp"),
			SignupComplete: d.flag("signup_complete"),
			ActiveAfter7d:  d.flag("active_after_7d"),
		}
		d.check(s)
		sessions = append(sessions, s)
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// DecodeEvents decodes the event_data sheet.
func DecodeEvents(rows [][]string) ([]domain.EventRecord, error) {
	var events []domain.EventRecord
	err := eachRow(config.SheetEventData, rows, eventColumns, func(d *rowDecoder) {
		e := domain.EventRecord{
			EventTS:       d.timestamp("evnt_ts"),
			VisitorID:     d.integer("visitor_id"),
			PayloadColumn: d.text("payload_column"),
		}
		d.check(e)
		events = append(events, e)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DecodeSummary decodes the session_sum sheet. Every header cell names a
// column and every data cell must be numeric.
func DecodeSummary(rows [][]string) (*domain.SummaryTable, error) {
	sheet := config.SheetSessionSum
	if len(rows) == 0 {
		return nil, reporterrors.NewSchemaError("sheet is empty", nil).WithSheet(sheet)
	}

	columns := make([]string, 0, len(rows[0]))
	for _, name := range rows[0] {
		columns = append(columns, cell([]string{name}, 0))
	}
	for len(columns) > 0 && columns[len(columns)-1] == "" {
		columns = columns[:len(columns)-1]
	}
	if len(columns) == 0 {
		return nil, reporterrors.NewSchemaError("header row has no columns", nil).WithSheet(sheet).WithRow(1)
	}

	table := &domain.SummaryTable{Columns: columns}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		values := make([]float64, len(columns))
		for j, name := range columns {
			v, err := parseFloat(cell(row, j))
			if err != nil {
				return nil, reporterrors.NewSchemaError("cannot decode cell", err).
					WithSheet(sheet).
					WithColumn(name).
					WithRow(i + 2)
			}
			values[j] = v
		}
		table.Rows = append(table.Rows, values)
	}

	if err := validate.Struct(table); err != nil {
		return nil, reporterrors.NewSchemaError("summary table has no data rows", err).WithSheet(sheet)
	}
	return table, nil
}

// sheetError wraps a source failure as a schema error for sheet
func sheetError(sheet string, err error) error {
	return reporterrors.NewSchemaError(fmt.Sprintf("cannot read sheet %q", sheet), err).WithSheet(sheet)
}
