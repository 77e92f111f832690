package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/pkg/contracts/domain"
)

// PayloadPair is one key=value element of a payload string.
type PayloadPair struct {
	Key   string
	Value string
}

// ParsePayload splits a payload on '&' and each pair on its first '='.
// Pairs keep their order; duplicate keys are kept. A pair without '=',
// including an empty payload, is a ParseError.
func ParsePayload(payload string) ([]PayloadPair, error) {
	pairs, err := parsePairs(payload)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func parsePairs(payload string) ([]PayloadPair, *reporterrors.ReportError) {
	parts := strings.Split(payload, "&")
	pairs := make([]PayloadPair, 0, len(parts))
	for i, part := range parts {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, reporterrors.NewParseError(
				fmt.Sprintf("payload pair %d %q has no '='", i+1, part), nil).
				WithColumn("payload_column").
				WithContext("pair_index", i).
				WithContext("pair", part)
		}
		pairs = append(pairs, PayloadPair{Key: key, Value: value})
	}
	return pairs, nil
}

// ExpandPayload expands the payload of the first event record into one row
// per pair. evnt_ts and visitor_id repeat on every row.
func (a *Analyzer) ExpandPayload(ctx context.Context) ([]domain.PayloadRow, error) {
	events, err := a.data.Events()
	if err != nil {
		return nil, inputError(config.ReportEventPayload, err)
	}
	if len(events) == 0 {
		return nil, reporterrors.NewSchemaError("event sheet has no records", nil).
			WithReport(config.ReportEventPayload).
			WithSheet(config.SheetEventData)
	}

	event := events[0]
	pairs, perr := parsePairs(event.PayloadColumn)
	if perr != nil {
		return nil, perr.WithReport(config.ReportEventPayload).WithSheet(config.SheetEventData)
	}

	rows := make([]domain.PayloadRow, len(pairs))
	for i, p := range pairs {
		rows[i] = domain.PayloadRow{
			EventTS:   event.EventTS,
			VisitorID: event.VisitorID,
			Key:       p.Key,
			Value:     p.Value,
		}
	}

	a.logger.DebugContext(ctx, "Payload expanded",
		slog.Int64("visitor_id", event.VisitorID),
		slog.Int("pairs", len(rows)))
	return rows, nil
}
