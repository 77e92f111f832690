package analysis

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/pkg/contracts/domain"
)

type fakeData struct {
	users       []domain.UserRecord
	sessions    []domain.SessionRecord
	summary     *domain.SummaryTable
	events      []domain.EventRecord
	usersErr    error
	sessionsErr error
	summaryErr  error
	eventsErr   error

	userCalls int
}

func (f *fakeData) Users() ([]domain.UserRecord, error) {
	f.userCalls++
	return f.users, f.usersErr
}
func (f *fakeData) Sessions() ([]domain.SessionRecord, error) { return f.sessions, f.sessionsErr }
func (f *fakeData) Summary() (*domain.SummaryTable, error)    { return f.summary, f.summaryErr }
func (f *fakeData) Events() ([]domain.EventRecord, error)     { return f.events, f.eventsErr }

func day(d int) time.Time {
	return time.Date(2021, 5, d, 0, 0, 0, 0, time.UTC)
}

func defaultOptions() Options {
	return Options{Experiment: 10000, DateFrom: day(3), DateTo: day(9)}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func user(visitor, session, experiment int64, date time.Time, signup int) domain.UserRecord {
	return domain.UserRecord{
		VisitorID:        visitor,
		SessionID:        session,
		ExperimentNumber: experiment,
		Country:          "IN",
		EventDate:        date,
		SignupStart:      signup,
	}
}

func session(id int64, rp, complete, active int) domain.SessionRecord {
	return domain.SessionRecord{SessionID: id, IsRP: rp, SignupComplete: complete, ActiveAfter7d: active}
}

func TestExperimentSessions_InnerJoinOnExperiment(t *testing.T) {
	data := &fakeData{
		users: []domain.UserRecord{
			user(1, 100, 10000, day(3), 1),
			user(2, 101, 20000, day(3), 1), // other experiment
			user(3, 102, 10000, day(4), 0), // no session
			user(4, 103, 10000, day(5), 1),
		},
		sessions: []domain.SessionRecord{
			session(103, 1, 0, 0),
			session(100, 1, 1, 1),
			session(100, 0, 0, 1), // second session row for the same key
			session(999, 0, 0, 0), // no user
		},
	}
	a := NewAnalyzer(data, defaultOptions(), quietLogger())

	rows, stats, err := a.ExperimentSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// User order first, then session order
	assert.Equal(t, int64(1), rows[0].User.VisitorID)
	assert.Equal(t, 1, rows[0].Session.IsRP)
	assert.Equal(t, int64(1), rows[1].User.VisitorID)
	assert.Equal(t, 0, rows[1].Session.IsRP)
	assert.Equal(t, int64(4), rows[2].User.VisitorID)

	assert.Equal(t, JoinStats{
		Experiment:        10000,
		UsersInExperiment: 3,
		UsersMatched:      2,
		UsersUnmatched:    1,
		SessionsUnmatched: 1,
		Rows:              3,
	}, stats)

	mismatch := stats.Mismatch()
	require.Error(t, mismatch)
	assert.True(t, reporterrors.IsType(mismatch, reporterrors.ErrTypeJoinMismatch))
}

func TestExperimentSessions_Memoized(t *testing.T) {
	data := &fakeData{
		users:    []domain.UserRecord{user(1, 100, 10000, day(3), 1)},
		sessions: []domain.SessionRecord{session(100, 1, 1, 1)},
	}
	a := NewAnalyzer(data, defaultOptions(), quietLogger())

	_, _, err := a.ExperimentSessions(context.Background())
	require.NoError(t, err)
	_, err = a.FilterSessions(context.Background())
	require.NoError(t, err)
	_, err = a.DailyFlagCounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, data.userCalls)
}

func TestExperimentSessions_MismatchIsLoggedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	data := &fakeData{
		users:    []domain.UserRecord{user(1, 100, 10000, day(3), 1)},
		sessions: []domain.SessionRecord{session(200, 1, 1, 1)},
	}
	a := NewAnalyzer(data, defaultOptions(), logger)

	rows, _, err := a.ExperimentSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "JOIN_MISMATCH")
}

func TestExperimentSessions_NoMismatch(t *testing.T) {
	stats := JoinStats{UsersMatched: 2, Rows: 2}
	assert.NoError(t, stats.Mismatch())
}

func TestExperimentSessions_InputErrors(t *testing.T) {
	loadErr := reporterrors.NewSchemaError("required column missing", nil).WithSheet(config.SheetSessionData)
	data := &fakeData{sessionsErr: loadErr}
	a := NewAnalyzer(data, defaultOptions(), quietLogger())

	_, err := a.FilterSessions(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), config.ReportUserSessions)

	_, err = a.DailyFlagCounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ReportRowCount)
	assert.Empty(t, loadErr.Report, "shared load error is not modified")
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ReportsConfig{Experiment: 7, DateFrom: "2021-05-03", DateTo: "2021-05-09"})
	require.NoError(t, err)
	assert.Equal(t, Options{Experiment: 7, DateFrom: day(3), DateTo: day(9)}, opts)

	_, err = OptionsFromConfig(config.ReportsConfig{DateFrom: "bad", DateTo: "2021-05-09"})
	require.Error(t, err)
}

func TestNewAnalyzer_NilLogger(t *testing.T) {
	a := NewAnalyzer(&fakeData{}, defaultOptions(), nil)
	assert.Equal(t, defaultOptions(), a.Options())

	_, _, err := a.ExperimentSessions(context.Background())
	assert.NoError(t, err)
}
