package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order for date cells stored as text
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/06",
	"01-02-06",
}

// normalizeHeader folds a header so "Experiment Number" matches "experiment_number"
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// header maps normalized column names to their positions
type header map[string]int

func indexHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		key := normalizeHeader(name)
		if key == "" {
			continue
		}
		if _, exists := h[key]; !exists {
			h[key] = i
		}
	}
	return h
}

// lookup returns the position of the first name present
func (h header) lookup(names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := h[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

// cell returns the trimmed text at idx, or "" when the row is short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseInt accepts "12" and integral float forms such as "12.0"
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}

// parseFlag accepts 0 or 1 in any integer form; TRUE/FALSE map to 1/0
func parseFlag(s string) (int, error) {
	switch strings.ToUpper(s) {
	case "TRUE":
		return 1, nil
	case "FALSE":
		return 0, nil
	}
	v, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if v != 0 && v != 1 {
		return 0, fmt.Errorf("flag must be 0 or 1, got %d", v)
	}
	return int(v), nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// parseTime accepts an Excel serial number or one of dateLayouts. Results are UTC.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %q: %w", s, err)
		}
		return t.UTC().Round(time.Second), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseDate is parseTime truncated to midnight UTC
func parseDate(s string) (time.Time, error) {
	t, err := parseTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseOptionalTime returns the zero time for an empty cell
func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}
