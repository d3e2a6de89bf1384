package models

import "time"

// Reservation statuses follow the lifecycle of a table booking.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationSeated    = "seated"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
	ReservationNoShow    = "no_show"
)

type Reservation struct {
	ID              string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ReservationDate string // YYYY-MM-DD
	ReservationTime string // HH:MM
	PartySize       int
	SpecialRequests string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidReservationStatus reports whether s is a known reservation status.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}
