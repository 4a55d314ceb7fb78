package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		from OrderStatus
		want OrderStatus
	}{
		{StatusPending, StatusInProgress},
		{StatusInProgress, StatusReady},
		{StatusReady, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, err := Advance(tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceRejectsTerminalAndUnknown(t *testing.T) {
	for _, from := range []OrderStatus{StatusCompleted, StatusRefunded, "", "SERVED"} {
		t.Run(string(from), func(t *testing.T) {
			_, err := Advance(from)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestCanRefund(t *testing.T) {
	assert.True(t, CanRefund(StatusPending))
	assert.True(t, CanRefund(StatusInProgress))
	assert.True(t, CanRefund(StatusReady))
	assert.False(t, CanRefund(StatusCompleted))
	assert.False(t, CanRefund(StatusRefunded))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("  in_progress ")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseOrderStatus("cooking")
	assert.Error(t, err)
}

func TestActive(t *testing.T) {
	assert.True(t, StatusPending.Active())
	assert.True(t, StatusInProgress.Active())
	assert.False(t, StatusReady.Active())
	assert.False(t, StatusCompleted.Active())
}
