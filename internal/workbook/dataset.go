package workbook

import (
	"context"
	"fmt"
	"log/slog"

	"sessioncli/internal/config"
	"sessioncli/internal/infrastructure"
	"sessioncli/pkg/contracts/domain"
)

// Dataset holds the four decoded sheets. A sheet that failed to load keeps
// its error so reports that do not need it can still run.
type Dataset struct {
	users    []domain.UserRecord
	sessions []domain.SessionRecord
	summary  *domain.SummaryTable
	events   []domain.EventRecord
	errs     map[string]error
}

// Users returns the user_data records or the error that prevented loading them.
func (d *Dataset) Users() ([]domain.UserRecord, error) {
	return d.users, d.errs[config.SheetUserData]
}

// Sessions returns the session_data records.
func (d *Dataset) Sessions() ([]domain.SessionRecord, error) {
	return d.sessions, d.errs[config.SheetSessionData]
}

// Summary returns the session_sum table.
func (d *Dataset) Summary() (*domain.SummaryTable, error) {
	return d.summary, d.errs[config.SheetSessionSum]
}

// Events returns the event_data records.
func (d *Dataset) Events() ([]domain.EventRecord, error) {
	return d.events, d.errs[config.SheetEventData]
}

// Err returns the load error for sheet, if any.
func (d *Dataset) Err(sheet string) error {
	return d.errs[sheet]
}

// NewDataset builds a dataset from already decoded records.
func NewDataset(users []domain.UserRecord, sessions []domain.SessionRecord, summary *domain.SummaryTable, events []domain.EventRecord) *Dataset {
	return &Dataset{
		users:    users,
		sessions: sessions,
		summary:  summary,
		events:   events,
		errs:     make(map[string]error),
	}
}

// Load reads and decodes all four sheets from src. It never fails as a whole:
// per-sheet failures are logged and recorded on the dataset.
func Load(ctx context.Context, src Source, logger *slog.Logger) *Dataset {
	logger = infrastructure.WithComponent(logger, "workbook")

	d := &Dataset{errs: make(map[string]error)}

	load := func(sheet string, decode func([][]string) (int, error)) {
		rows, err := src.Rows(ctx, sheet)
		if err != nil {
			err = sheetError(sheet, err)
		} else {
			var n int
			n, err = decode(rows)
			if err == nil {
				logger.InfoContext(ctx, "Sheet loaded",
					slog.String("sheet", sheet),
					slog.Int("records", n))
				return
			}
		}
		d.errs[sheet] = err
		logger.ErrorContext(ctx, "Sheet failed to load",
			slog.String("sheet", sheet),
			slog.String("error", err.Error()))
	}

	load(config.SheetUserData, func(rows [][]string) (n int, err error) {
		d.users, err = DecodeUsers(rows)
		return len(d.users), err
	})
	load(config.SheetSessionData, func(rows [][]string) (n int, err error) {
		d.sessions, err = DecodeSessions(rows)
		return len(d.sessions), err
	})
	load(config.SheetSessionSum, func(rows [][]string) (n int, err error) {
		d.summary, err = DecodeSummary(rows)
		if d.summary == nil {
			return 0, err
		}
		return len(d.summary.Rows), err
	})
	load(config.SheetEventData, func(rows [][]string) (n int, err error) {
		d.events, err = DecodeEvents(rows)
		return len(d.events), err
	})

	return d
}

// Open creates the Source named by cfg.
func Open(ctx context.Context, cfg config.InputConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceXLSX, "":
		return OpenExcel(cfg.Path)
	case config.SourceGSheet:
		if cfg.CredentialsFile == "" {
			return NewGoogleSheetSource(ctx, cfg.SpreadsheetID)
		}
		creds, err := CredentialsOption(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return NewGoogleSheetSource(ctx, cfg.SpreadsheetID, creds)
	default:
		return nil, fmt.Errorf("unknown input source %q", cfg.Source)
	}
}

// LoadFile opens, reads and closes the source described by cfg.
func LoadFile(ctx context.Context, cfg config.InputConfig, logger *slog.Logger) (*Dataset, error) {
	src, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return Load(ctx, src, logger), nil
}
