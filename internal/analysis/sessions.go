package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"sessioncli/internal/config"
	"sessioncli/pkg/contracts/domain"
)

// FilterSessions restricts the experiment sessions to the configured date
// range and projects the user columns. Rows are sorted by ascending
// event_date; rows with equal dates keep their join order.
func (a *Analyzer) FilterSessions(ctx context.Context) ([]domain.UserSession, error) {
	joined, _, err := a.ExperimentSessions(ctx)
	if err != nil {
		return nil, inputError(config.ReportUserSessions, err)
	}

	var out []domain.UserSession
	for _, row := range joined {
		if !a.inRange(row.User.EventDate) {
			continue
		}
		out = append(out, domain.UserSession{
			VisitorID:   row.User.VisitorID,
			SessionID:   row.User.SessionID,
			Country:     row.User.Country,
			EventDate:   row.User.EventDate,
			SignupStart: row.User.SignupStart,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventDate.Before(out[j].EventDate)
	})

	a.logger.DebugContext(ctx, "Sessions filtered",
		slog.Int("joined", len(joined)),
		slog.Int("in_range", len(out)))
	return out, nil
}

// DailyFlagCounts counts, per event_date, the joined rows where each flag
// equals 1. Per-flag counts are merged on event_date by inner join, so a date
// missing from any flag's counts is dropped. Rows are in ascending date order.
func (a *Analyzer) DailyFlagCounts(ctx context.Context) ([]domain.DailyFlagCount, error) {
	joined, _, err := a.ExperimentSessions(ctx)
	if err != nil {
		return nil, inputError(config.ReportRowCount, err)
	}

	perFlag := make(map[string]map[time.Time]int64, len(domain.DailyFlags))
	for _, flag := range domain.DailyFlags {
		counts := make(map[time.Time]int64)
		for _, row := range joined {
			if v, _ := row.Flag(flag); v == 1 {
				counts[row.User.EventDate]++
			}
		}
		perFlag[flag] = counts
	}

	// Dates of the first flag drive the merge; the others must agree
	var dates []time.Time
	for date := range perFlag[domain.DailyFlags[0]] {
		inAll := true
		for _, flag := range domain.DailyFlags[1:] {
			if _, ok := perFlag[flag][date]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]domain.DailyFlagCount, 0, len(dates))
	for _, date := range dates {
		counts := make(map[string]int64, len(domain.DailyFlags))
		for _, flag := range domain.DailyFlags {
			counts[flag] = perFlag[flag][date]
		}
		out = append(out, domain.DailyFlagCount{EventDate: date, Counts: counts})
	}

	a.logger.DebugContext(ctx, "Daily flag counts computed",
		slog.Int("dates", len(out)))
	return out, nil
}
