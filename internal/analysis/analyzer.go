package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/internal/infrastructure"
	"sessioncli/pkg/contracts/domain"
)

// Data supplies the decoded workbook tables. Each accessor returns the load
// error of its sheet, if any.
type Data interface {
	Users() ([]domain.UserRecord, error)
	Sessions() ([]domain.SessionRecord, error)
	Summary() (*domain.SummaryTable, error)
	Events() ([]domain.EventRecord, error)
}

// Options are the report filter parameters.
type Options struct {
	Experiment int64
	DateFrom   time.Time
	DateTo     time.Time
}

// OptionsFromConfig converts the reports configuration.
func OptionsFromConfig(cfg config.ReportsConfig) (Options, error) {
	from, to, err := cfg.DateRange()
	if err != nil {
		return Options{}, err
	}
	return Options{Experiment: cfg.Experiment, DateFrom: from, DateTo: to}, nil
}

// JoinStats describes how the experiment users matched the sessions table.
type JoinStats struct {
	Experiment        int64
	UsersInExperiment int
	UsersMatched      int
	UsersUnmatched    int
	SessionsUnmatched int
	Rows              int
}

// Mismatch returns a JoinMismatch error when any key was present on one side
// only, otherwise nil.
func (s JoinStats) Mismatch() error {
	if s.UsersUnmatched == 0 && s.SessionsUnmatched == 0 {
		return nil
	}
	return reporterrors.NewJoinMismatchError(
		fmt.Sprintf("%d experiment users without a session, %d sessions without an experiment user",
			s.UsersUnmatched, s.SessionsUnmatched)).
		WithContext("experiment", s.Experiment).
		WithContext("users_unmatched", s.UsersUnmatched).
		WithContext("sessions_unmatched", s.SessionsUnmatched)
}

// Analyzer computes the reports over one dataset. The experiment join is
// derived once and shared by every report that needs it.
type Analyzer struct {
	data   Data
	opts   Options
	logger *slog.Logger

	joined *joinResult
}

type joinResult struct {
	rows  []domain.SessionRow
	stats JoinStats
	err   error
}

// NewAnalyzer creates an analyzer over data.
func NewAnalyzer(data Data, opts Options, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		data:   data,
		opts:   opts,
		logger: infrastructure.WithComponent(logger, "analysis"),
	}
}

// Options returns the analyzer's filter parameters.
func (a *Analyzer) Options() Options {
	return a.opts
}

// ExperimentSessions returns the users of the configured experiment
// inner-joined with their sessions on session_id, in user order then
// session order. Keys present on one side only are dropped and reported as
// a JoinMismatch warning, never as a failure.
func (a *Analyzer) ExperimentSessions(ctx context.Context) ([]domain.SessionRow, JoinStats, error) {
	if a.joined == nil {
		a.joined = a.join(ctx)
	}
	return a.joined.rows, a.joined.stats, a.joined.err
}

func (a *Analyzer) join(ctx context.Context) *joinResult {
	users, err := a.data.Users()
	if err != nil {
		return &joinResult{err: err}
	}
	sessions, err := a.data.Sessions()
	if err != nil {
		return &joinResult{err: err}
	}

	bySession := make(map[int64][]int, len(sessions))
	for i, s := range sessions {
		bySession[s.SessionID] = append(bySession[s.SessionID], i)
	}

	stats := JoinStats{Experiment: a.opts.Experiment}
	referenced := make(map[int64]bool)
	var rows []domain.SessionRow
	for _, u := range users {
		if u.ExperimentNumber != a.opts.Experiment {
			continue
		}
		stats.UsersInExperiment++
		matches := bySession[u.SessionID]
		if len(matches) == 0 {
			stats.UsersUnmatched++
			continue
		}
		stats.UsersMatched++
		referenced[u.SessionID] = true
		for _, idx := range matches {
			rows = append(rows, domain.SessionRow{User: u, Session: sessions[idx]})
		}
	}
	for id, idxs := range bySession {
		if !referenced[id] {
			stats.SessionsUnmatched += len(idxs)
		}
	}
	stats.Rows = len(rows)

	if mismatch := stats.Mismatch(); mismatch != nil {
		a.logger.WarnContext(ctx, "Join dropped unmatched rows",
			slog.String("error", mismatch.Error()),
			slog.Int64("experiment", a.opts.Experiment))
	}

	a.logger.InfoContext(ctx, "Experiment sessions joined",
		slog.Int64("experiment", a.opts.Experiment),
		slog.Int("users_in_experiment", stats.UsersInExperiment),
		slog.Int("users_matched", stats.UsersMatched),
		slog.Int("rows", stats.Rows))

	return &joinResult{rows: rows, stats: stats}
}

// inRange reports whether d lies within the inclusive date range
func (a *Analyzer) inRange(d time.Time) bool {
	return !d.Before(a.opts.DateFrom) && !d.After(a.opts.DateTo)
}

// inputError prefixes an input failure with the report that needed it. The
// shared load error itself is never modified.
func inputError(report string, err error) error {
	return fmt.Errorf("%s: %w", report, err)
}
