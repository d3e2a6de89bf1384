package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mfrancke/seatly/internal/database"
	"github.com/mfrancke/seatly/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, customer_name, customer_email, customer_phone,
	to_char(reservation_date, 'YYYY-MM-DD'), to_char(reservation_time, 'HH24:MI'),
	party_size, special_requests, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var res models.Reservation
	err := row.Scan(
		&res.ID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&res.ReservationDate, &res.ReservationTime, &res.PartySize,
		&res.SpecialRequests, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &res, nil
}

// List returns reservations newest first, optionally filtered by status.
func (r *ReservationRepository) List(ctx context.Context, status string) ([]*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY reservation_date DESC, reservation_time DESC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]*models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reservations, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	res.ID = uuid.New().String()

	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now

	if res.Status == "" {
		res.Status = models.ReservationPending
	}

	query := `
		INSERT INTO reservations (id, customer_name, customer_email, customer_phone,
			reservation_date, reservation_time, party_size, special_requests, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + reservationColumns + `
	`

	return scanReservation(r.db.Pool.QueryRow(ctx, query,
		res.ID, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.ReservationDate, res.ReservationTime, res.PartySize,
		res.SpecialRequests, res.Status, res.CreatedAt, res.UpdatedAt,
	))
}

func (r *ReservationRepository) Update(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error) {
	res.UpdatedAt = time.Now()

	query := `
		UPDATE reservations
		SET customer_name = $1, customer_email = $2, customer_phone = $3,
			reservation_date = $4, reservation_time = $5, party_size = $6,
			special_requests = $7, status = $8, updated_at = $9
		WHERE id = $10
		RETURNING ` + reservationColumns + `
	`

	return scanReservation(r.db.Pool.QueryRow(ctx, query,
		res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.ReservationDate, res.ReservationTime, res.PartySize,
		res.SpecialRequests, res.Status, res.UpdatedAt, id,
	))
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
