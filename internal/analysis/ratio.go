package analysis

import (
	"context"
	"fmt"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/pkg/contracts/domain"
)

// ColumnRatios appends to a copy of the summary table a row holding, for
// each column after the first, the first-row value divided by the previous
// column's first-row value. The first cell of the appended row is undefined
// (nil). The source table is never modified.
func (a *Analyzer) ColumnRatios(ctx context.Context) (*domain.RatioTable, error) {
	summary, err := a.data.Summary()
	if err != nil {
		return nil, inputError(config.ReportColumnRatio, err)
	}

	table, err := RatioTableOf(summary)
	if err != nil {
		return nil, err
	}

	a.logger.DebugContext(ctx, "Column ratios computed")
	return table, nil
}

// RatioTableOf builds the ratio table for summary.
func RatioTableOf(summary *domain.SummaryTable) (*domain.RatioTable, error) {
	if summary == nil || len(summary.Columns) == 0 || len(summary.Rows) == 0 {
		return nil, reporterrors.NewSchemaError("summary table has no data", nil).
			WithReport(config.ReportColumnRatio).
			WithSheet(config.SheetSessionSum)
	}

	src := summary.Clone()
	first := src.Rows[0]

	ratios := make([]*float64, len(src.Columns))
	for i := 1; i < len(src.Columns); i++ {
		den := first[i-1]
		if den == 0 {
			return nil, reporterrors.NewArithmeticError(
				fmt.Sprintf("zero denominator: %s / %s", src.Columns[i], src.Columns[i-1])).
				WithReport(config.ReportColumnRatio).
				WithSheet(config.SheetSessionSum).
				WithColumn(src.Columns[i-1]).
				WithRow(1)
		}
		r := first[i] / den
		ratios[i] = &r
	}

	out := &domain.RatioTable{
		Columns: src.Columns,
		Rows:    make([][]*float64, 0, len(src.Rows)+1),
	}
	for _, row := range src.Rows {
		cells := make([]*float64, len(row))
		for j := range row {
			cells[j] = &row[j]
		}
		out.Rows = append(out.Rows, cells)
	}
	out.Rows = append(out.Rows, ratios)
	return out, nil
}
