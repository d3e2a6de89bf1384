package services

import (
	"context"
	"log/slog"

	"github.com/mfrancke/seatly/internal/models"
)

// ReservationRepository persists reservations.
type ReservationRepository interface {
	List(ctx context.Context, status string) ([]*models.Reservation, error)
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	Update(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// ReservationNotifier sends customer-facing reservation notices.
type ReservationNotifier interface {
	SendReservationConfirmation(ctx context.Context, res *models.Reservation) error
}

// ReservationService handles the booking CRUD. The notifier is optional;
// a nil notifier simply skips confirmation emails.
type ReservationService struct {
	repo     ReservationRepository
	notifier ReservationNotifier
	logger   *slog.Logger
}

func NewReservationService(repo ReservationRepository, notifier ReservationNotifier, logger *slog.Logger) *ReservationService {
	return &ReservationService{repo: repo, notifier: notifier, logger: logger}
}

func (s *ReservationService) List(ctx context.Context, status string) ([]*models.Reservation, error) {
	if status != "" && !models.ValidReservationStatus(status) {
		return nil, models.ErrBadRequest
	}
	return s.repo.List(ctx, status)
}

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ReservationService) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	if res.Status == "" {
		res.Status = models.ReservationPending
	}
	if !models.ValidReservationStatus(res.Status) {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, res)
	if err != nil {
		s.logger.Error("failed to create reservation", slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("reservation created",
		slog.String("reservation_id", created.ID),
		slog.String("date", created.ReservationDate))

	// Confirmation email is best effort; a mail outage never fails the
	// booking.
	if s.notifier != nil {
		if err := s.notifier.SendReservationConfirmation(ctx, created); err != nil {
			s.logger.Error("failed to send reservation confirmation",
				slog.String("reservation_id", created.ID),
				slog.Any("error", err))
		}
	}

	return created, nil
}

func (s *ReservationService) Update(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error) {
	if !models.ValidReservationStatus(res.Status) {
		return nil, models.ErrBadRequest
	}
	return s.repo.Update(ctx, id, res)
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
