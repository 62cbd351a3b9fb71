// Package model defines the core domain types for the property reservation system.
package model

import "time"

// Reservation is a tenant's booking of a property for a date interval.
type Reservation struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TenantID   string    `json:"tenant_id"`
	Interval   Interval  `json:"interval"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsPending reports whether the reservation can still be changed by its tenant.
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Property is a directory record. Only the owner is relevant to booking rules.
type Property struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// User is a directory record for both owners and tenants.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// OverlapFilter narrows an overlap query.
type OverlapFilter struct {
	// ExcludeID skips one reservation, used when a reservation is re-checked against its own property.
	ExcludeID string
	// IgnoreStatuses lists statuses that never block a new booking.
	IgnoreStatuses []Status
}

// Ignores reports whether reservations in status s are skipped by the filter.
func (f OverlapFilter) Ignores(s Status) bool {
	for _, st := range f.IgnoreStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// CreateReservationRequest is the payload for booking a property.
// Dates are pointers so a missing value can be told apart from the zero date.
type CreateReservationRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	TenantID   string `json:"tenant_id" validate:"required,uuid"`
	StartDate  *Date  `json:"start_date"`
	EndDate    *Date  `json:"end_date"`
}

// UpdateReservationRequest changes the dates of a pending reservation.
// A nil field keeps the reservation's current value.
type UpdateReservationRequest struct {
	StartDate *Date `json:"start_date"`
	EndDate   *Date `json:"end_date"`
}

// StatusRequest is the payload for moving a reservation to a new status.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// ReservationResponse is the projection returned by the read views.
type ReservationResponse struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	StartDate  Date   `json:"start_date"`
	EndDate    Date   `json:"end_date"`
	Status     string `json:"status"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// BookingResult summarises the outcome of a single booking attempt.
// Used in the concurrent test harness.
type BookingResult struct {
	TenantID string
	Success  bool
	Error    error
}
