package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{in: "/batch 1140 Spaghetti", wantType: CommandBatch, wantArgs: []string{"1140", "Spaghetti"}},
		{in: "  MACHINE 2025-02-26 11800 1000 ", wantType: CommandMachine, wantArgs: []string{"2025-02-26", "11800", "1000"}},
		{in: "/Baseline 50", wantType: CommandBaseline, wantArgs: []string{"50"}},
		{in: "/report", wantType: CommandReport},
		{in: "/eggs 12", wantType: CommandUnknown, wantArgs: []string{"12"}},
		{in: "   ", wantType: CommandUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			cmd := ParseCommand(tt.in)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.in, cmd.Raw)
		})
	}
}

func TestValidateDateKey(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateDateKey("date", "2024-02-29"))
	for _, bad := range []string{"", "2025-2-26", "2025-02-29", "20250226", "2025-02-26T00:00:00Z"} {
		err := ValidateDateKey("date", bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	assert.EqualError(t, NewValidationError("counter_a", "must not be negative"), "validation failed: counter_a must not be negative")
	assert.EqualError(t, NewValidationError("", "bad input"), "validation failed: bad input")
}
