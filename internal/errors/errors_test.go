package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/pkg/contracts/domain"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeStructuralParse, "no usable header row", nil),
			want: "[STRUCTURAL_PARSE] no usable header row",
		},
		{
			name: "with cause",
			err:  NewAppError(ErrTypeStorage, "write failed", errors.New("disk full")),
			want: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewStructuralParseError("sheet unparseable", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("parse: %w", err), &appErr))
	assert.Equal(t, ErrTypeStructuralParse, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStructuralParseError("bad sheet", nil).
		WithContext("sheet", "P&L 2024").
		WithContext("rows", 2)

	assert.Equal(t, "P&L 2024", err.Context["sheet"])
	assert.Equal(t, 2, err.Context["rows"])
}

func TestTypedHelpers(t *testing.T) {
	key := domain.PeriodKey{OpportunityID: "opp-1", PeriodType: domain.PeriodTypeAnnual, Year: 2024}

	locked := NewLockedPeriodError(key)
	assert.True(t, IsLockedPeriod(locked))
	assert.False(t, IsDuplicatePeriod(locked))
	assert.Contains(t, locked.Error(), "opp-1/2024")

	dup := NewDuplicatePeriodError(key)
	assert.True(t, IsDuplicatePeriod(dup))
	assert.False(t, IsLockedPeriod(dup))

	parse := NewStructuralParseError("no header", nil)
	assert.True(t, IsStructuralParse(parse))

	// Wrapped errors keep their type.
	wrapped := fmt.Errorf("store: %w", dup)
	assert.True(t, IsDuplicatePeriod(wrapped))
	assert.False(t, IsType(errors.New("plain"), ErrTypeLockedPeriod))
}

func TestNewClassificationError(t *testing.T) {
	err := NewClassificationError("Mystery Row")
	assert.True(t, IsType(err, ErrTypeClassification))
	assert.Contains(t, err.Error(), "Mystery Row")
	assert.Equal(t, "Mystery Row", err.Context["label"])
}

func TestNewOverrideConflictError(t *testing.T) {
	err := NewOverrideConflictError("gross_profit")
	assert.True(t, IsType(err, ErrTypeOverrideConflict))
	assert.Equal(t, "gross_profit", err.Context["field"])
}
