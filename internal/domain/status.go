package domain

import "fmt"

// Status is the closed order-status enumeration. Orders only move forward;
// Cancelled is reachable from any non-terminal state.
type Status string

const (
	StatusNew       Status = "New"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready for Pickup"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusNew, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

// Any forward move is legal (a staff member can complete an order straight
// from Preparing); backward moves are not, and terminal states have no
// successors.
var successors = map[Status][]Status{
	StatusNew:       {StatusPreparing, StatusReady, StatusCompleted, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCompleted, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// Valid reports whether s is a member of the enumeration.
func (s Status) Valid() bool {
	_, ok := successors[s]
	return ok
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether target is an allowed successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range successors[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ParseStatus validates a wire value against the enumeration.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}
