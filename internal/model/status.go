package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusRejected, StatusFinished, StatusCancelled}

// ClosedStatuses are the statuses of reservations that were turned down or called off.
// They may be excluded from availability checks.
var ClosedStatuses = []Status{StatusRejected, StatusCancelled}

// transitions is the reservation state machine: current status -> allowed next statuses.
// Statuses without an entry are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusFinished, StatusCancelled},
}

// verbs is used to phrase transition errors.
var verbs = map[Status]string{
	StatusConfirmed: "confirmed",
	StatusRejected:  "rejected",
	StatusFinished:  "finished",
	StatusCancelled: "cancelled",
}

// ParseStatus converts a case-insensitive name into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) String() string { return string(s) }

// RequiredPrior returns the status a reservation must be in to move to next.
// ok is false when no status leads to next.
func RequiredPrior(next Status) (prior Status, ok bool) {
	for _, from := range AllStatuses {
		for _, to := range transitions[from] {
			if to == next {
				return from, true
			}
		}
	}
	return "", false
}

// CheckTransition validates moving from current to next. The returned error
// message names the status the reservation would have needed to be in.
func CheckTransition(current, next Status) error {
	for _, to := range transitions[current] {
		if to == next {
			return nil
		}
	}
	prior, ok := RequiredPrior(next)
	if !ok {
		return fmt.Errorf("invalid reservation status %q", next)
	}
	return fmt.Errorf("reservation can only be %s if it is %s", verbs[next], prior)
}
