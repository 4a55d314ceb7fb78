package domain

import (
	"errors"
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusRefunded   OrderStatus = "REFUNDED"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotRefundable     = errors.New("sale cannot be refunded")
	// ErrStatusConflict is returned by stores when a conditional status
	// update finds the row in a different state than expected.
	ErrStatusConflict    = errors.New("status changed concurrently")
)

var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusReady,
	StatusReady:      StatusCompleted,
}

// Advance returns the single forward step for the kitchen board.
// COMPLETED and REFUNDED have no successor.
func Advance(current OrderStatus) (OrderStatus, error) {
	next, ok := nextStatus[current]
	if !ok {
		return "", fmt.Errorf("advance from %q: %w", current, ErrInvalidTransition)
	}
	return next, nil
}

// CanRefund reports whether the refund path is open from the given state.
func CanRefund(current OrderStatus) bool {
	switch current {
	case StatusPending, StatusInProgress, StatusReady:
		return true
	}
	return false
}

// Active statuses are the ones the kitchen still has to prepare.
func (s OrderStatus) Active() bool {
	return s == StatusPending || s == StatusInProgress
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusInProgress, StatusReady, StatusCompleted, StatusRefunded:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}
