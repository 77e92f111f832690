package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ReportError
		want string
	}{
		{
			name: "message only",
			err:  NewArithmeticError("division by zero"),
			want: "[ARITHMETIC] division by zero",
		},
		{
			name: "with report and location",
			err: NewSchemaError("cannot decode date", nil).
				WithReport("user_sessions").
				WithSheet("user_data").
				WithColumn("event_date").
				WithRow(4),
			want: "[SCHEMA] report user_sessions: sheet user_data, column event_date, row 4: cannot decode date",
		},
		{
			name: "with cause",
			err:  NewParseError("pair missing '='", io.ErrUnexpectedEOF).WithRow(0),
			want: "[PARSE] row 0: pair missing '=': unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestReportError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := fmt.Errorf("load: %w", NewSchemaError("read sheet", cause))

	assert.ErrorIs(t, err, cause)

	var re *ReportError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrTypeSchema, re.Type)
}

func TestReportError_WithContext(t *testing.T) {
	err := NewJoinMismatchError("unmatched keys").
		WithContext("users_only", 2).
		WithContext("sessions_only", 1)

	assert.Equal(t, 2, err.Context["users_only"])
	assert.Equal(t, 1, err.Context["sessions_only"])

	var empty ReportError
	empty.WithContext("k", "v")
	assert.Equal(t, "v", empty.Context["k"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"schema", NewSchemaError("x", nil), ErrTypeSchema, true},
		{"wrapped parse", fmt.Errorf("wrap: %w", NewParseError("x", nil)), ErrTypeParse, true},
		{"type mismatch", NewArithmeticError("x"), ErrTypeSchema, false},
		{"plain error", errors.New("x"), ErrTypeSchema, false},
		{"nil", nil, ErrTypeSchema, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	errType, ok := GetErrorType(NewJoinMismatchError("x"))
	assert.True(t, ok)
	assert.Equal(t, ErrTypeJoinMismatch, errType)

	_, ok = GetErrorType(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorList(t *testing.T) {
	var el ErrorList
	assert.False(t, el.HasErrors())
	assert.NoError(t, el.ErrorOrNil())
	assert.Equal(t, "no errors", el.Error())

	el.Add(nil)
	assert.False(t, el.HasErrors())

	parseErr := NewParseError("bad pair", nil)
	el.Add(parseErr)
	assert.Equal(t, parseErr.Error(), el.Error())

	el.Add(NewArithmeticError("zero"))
	require.Error(t, el.ErrorOrNil())
	assert.Contains(t, el.Error(), "2 errors occurred")
	assert.True(t, IsType(&el, ErrTypeParse))
	assert.Len(t, el.Unwrap(), 2)
}
