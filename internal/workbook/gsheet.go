package workbook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheetSource reads sheets from a Google spreadsheet. Values are fetched
// unformatted with dates as serial numbers, matching ExcelSource output.
type GoogleSheetSource struct {
	spreadsheetID string
	service       *sheets.Service
}

// NewGoogleSheetSource creates a source for spreadsheetID. Extra client
// options (endpoint, HTTP client) are passed through to the Sheets service.
func NewGoogleSheetSource(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleSheetSource, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleSheetSource{spreadsheetID: spreadsheetID, service: service}, nil
}

// CredentialsOption reads a service-account JSON file into a client option.
func CredentialsOption(path string) (option.ClientOption, error) {
	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("credentials file %s is empty", path)
	}
	return option.WithCredentialsJSON(credentialsJSON), nil
}

// Rows fetches the full used range of the sheet.
func (s *GoogleSheetSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s: %s", ErrSheetNotFound, sheet, apiErr.Message)
		}
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = cellText(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// Close is a no-op; the Sheets client holds no open resources.
func (s *GoogleSheetSource) Close() error {
	return nil
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(val)
	}
}
