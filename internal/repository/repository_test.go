package repository

import (
	"testing"
	"time"

	"restobackend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, []string{}, statusStrings(nil))
	assert.Equal(t,
		[]string{"PENDING", "IN_PROGRESS"},
		statusStrings([]domain.OrderStatus{domain.StatusPending, domain.StatusInProgress}),
	)
}

func TestNullableTime(t *testing.T) {
	assert.Nil(t, nullableTime(time.Time{}))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := nullableTime(at)
	if assert.NotNil(t, got) {
		assert.True(t, got.Equal(at))
	}
}

func TestErrNotFoundIsDomainSentinel(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, domain.ErrNotFound)
}
