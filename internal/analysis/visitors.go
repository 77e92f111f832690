package analysis

import (
	"context"
	"time"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/pkg/contracts/domain"
)

// Visitor chart labels
const (
	VisitorChartTitle  = "Visitors Count"
	VisitorChartXLabel = "Event Date"
	VisitorChartYLabel = "No. of Visitors"
)

// VisitorSeries groups the filtered sessions by event_date and counts rows
// per date. A visitor appearing twice on one date counts twice.
func (a *Analyzer) VisitorSeries(ctx context.Context) (*domain.VisitorSeries, error) {
	sessions, err := a.FilterSessions(ctx)
	if err != nil {
		return nil, inputError(config.ReportVisitorsChart, err)
	}

	series := &domain.VisitorSeries{
		Title:  VisitorChartTitle,
		XLabel: VisitorChartXLabel,
		YLabel: VisitorChartYLabel,
	}

	// Input is sorted by date, so equal dates are adjacent
	var current time.Time
	for _, s := range sessions {
		if len(series.Points) == 0 || !s.EventDate.Equal(current) {
			current = s.EventDate
			series.Points = append(series.Points, domain.VisitorPoint{EventDate: current})
		}
		series.Points[len(series.Points)-1].Count++
	}

	if len(series.Points) == 0 {
		return series, reporterrors.NewSchemaError("no sessions in the date range to chart", nil).
			WithReport(config.ReportVisitorsChart)
	}
	return series, nil
}
