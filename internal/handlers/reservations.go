package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfrancke/seatly/internal/models"
	pkghttp "github.com/mfrancke/seatly/pkg/http"
)

// ReservationServiceInterface is the booking surface consumed by the
// HTTP layer.
type ReservationServiceInterface interface {
	List(ctx context.Context, status string) ([]*models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	Update(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// ReservationHandler handles reservation HTTP requests.
type ReservationHandler struct {
	reservations ReservationServiceInterface
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservations ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type ReservationRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=100"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,max=30"`
	ReservationDate string `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	ReservationTime string `json:"reservation_time" validate:"required,datetime=15:04"`
	PartySize       int    `json:"party_size" validate:"required,min=1,max=20"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=500"`
	Status          string `json:"status" validate:"omitempty"`
}

type ReservationResponse struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests"`
	Status          string `json:"status"`
}

func reservationToResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		PartySize:       r.PartySize,
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
	}
}

func reservationFromRequest(req ReservationRequest) *models.Reservation {
	return &models.Reservation{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          req.Status,
	}
}

// List handles GET /reservations. An optional ?status= filter narrows
// the result to one lifecycle state.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	reservations, err := h.reservations.List(r.Context(), status)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid status filter")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	out := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, reservationToResponse(res))
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

// Get handles GET /reservations/{id}.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Reservation not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, reservationToResponse(res))
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.reservations.Create(r.Context(), reservationFromRequest(req))
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid reservation status")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, reservationToResponse(created))
}

// Update handles PUT /reservations/{id}.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.reservations.Update(r.Context(), id, reservationFromRequest(req))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Reservation not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid reservation status")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, reservationToResponse(updated))
}

// Delete handles DELETE /reservations/{id}.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reservations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Reservation not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}
