package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"registration-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle. The orchestrator uses it to open
// the registration transaction; no other code should.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// GetEventByID retrieves an event by ID
func (s *Store) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := s.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetDistanceByID retrieves a distance by ID
func (s *Store) GetDistanceByID(ctx context.Context, id int64) (*models.Distance, error) {
	var distance models.Distance
	err := s.db.GetContext(ctx, &distance, "SELECT * FROM distances WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("distance not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &distance, nil
}

// GetDistancesByIDs retrieves multiple distances by IDs
func (s *Store) GetDistancesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Distance, error) {
	if len(ids) == 0 {
		return map[int64]*models.Distance{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM distances WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var distances []models.Distance
	if err := s.db.SelectContext(ctx, &distances, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Distance, len(distances))
	for i := range distances {
		byID[distances[i].ID] = &distances[i]
	}
	return byID, nil
}

// GetMerchandiseByID retrieves a merchandise item by ID
func (s *Store) GetMerchandiseByID(ctx context.Context, id int64) (*models.MerchandiseItem, error) {
	var item models.MerchandiseItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM merchandise_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("merchandise item not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetVariationOption retrieves a variation option by ID
func (s *Store) GetVariationOption(ctx context.Context, id int64) (*models.VariationOption, error) {
	var opt models.VariationOption
	err := s.db.GetContext(ctx, &opt, "SELECT * FROM variation_options WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("variation option not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// GetDefaultVariationOption retrieves the implicit option of a merchandise
// item that was created without explicit variations.
func (s *Store) GetDefaultVariationOption(ctx context.Context, merchandiseID int64) (*models.VariationOption, error) {
	var opt models.VariationOption
	err := s.db.GetContext(ctx, &opt, `
		SELECT vo.* FROM variation_options vo
		JOIN variation_types vt ON vt.id = vo.variation_type_id
		WHERE vt.merchandise_id = $1
		ORDER BY vo.id
		LIMIT 1`, merchandiseID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no variation options for merchandise item: %d", merchandiseID)
	}
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// GetActiveTicketsForEvent retrieves all active tickets for an event, used by
// duplicate-registration detection.
func (s *Store) GetActiveTicketsForEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.SelectContext(ctx, &tickets,
		"SELECT * FROM tickets WHERE event_id = $1 AND status = $2",
		eventID, models.TicketStatusActive)
	return tickets, err
}
