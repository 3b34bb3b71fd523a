package store

import (
	"context"
	"time"

	"registration-service/internal/models"
	"registration-service/internal/regerr"
	"registration-service/internal/util"

	"github.com/jmoiron/sqlx"
)

// The capacity and stock ledger. Distance.current_participant_count and
// VariationOption.current_stock are the only shared mutable counters in the
// system, and every mutation goes through the conditional single-statement
// updates below. The row count of the conditional UPDATE is the lock:
// concurrent attempts at the last slot race, exactly one statement matches,
// the rest affect zero rows and fail with no side effects.

// almostFullThreshold marks a distance as almost_full at this utilization.
// Informational only, never a hard error.
const almostFullThreshold = 0.9

// ComputeCapacityStatus derives the capacity status of a distance from its
// counter and limit.
func ComputeCapacityStatus(d *models.Distance) models.CapacityStatus {
	status := models.CapacityStatus{DistanceID: d.ID}
	if d.EntryLimit == nil {
		status.Status = models.CapacityUnlimited
		return status
	}

	limit := *d.EntryLimit
	available := limit - d.CurrentParticipantCount
	if available < 0 {
		available = 0
	}
	status.AvailableSpots = &available

	switch {
	case d.CurrentParticipantCount >= limit:
		status.Status = models.CapacityFull
	case float64(d.CurrentParticipantCount) >= float64(limit)*almostFullThreshold:
		status.Status = models.CapacityAlmostFull
	default:
		status.Status = models.CapacityAvailable
	}
	return status
}

// GetDistanceTx reads a distance inside the enclosing transaction, used by
// the orchestrator's capacity pre-check.
func (s *Store) GetDistanceTx(ctx context.Context, tx *sqlx.Tx, distanceID int64) (*models.Distance, error) {
	var distance models.Distance
	err := tx.GetContext(ctx, &distance, "SELECT * FROM distances WHERE id = $1", distanceID)
	if err != nil {
		return nil, err
	}
	return &distance, nil
}

// GetVariationOptionTx reads a variation option inside the enclosing
// transaction, used by the orchestrator's stock pre-check.
func (s *Store) GetVariationOptionTx(ctx context.Context, tx *sqlx.Tx, optionID int64) (*models.VariationOption, error) {
	var opt models.VariationOption
	err := tx.GetContext(ctx, &opt, "SELECT * FROM variation_options WHERE id = $1", optionID)
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// GetMerchandiseTx reads a merchandise item inside the enclosing transaction.
func (s *Store) GetMerchandiseTx(ctx context.Context, tx *sqlx.Tx, merchandiseID int64) (*models.MerchandiseItem, error) {
	var item models.MerchandiseItem
	err := tx.GetContext(ctx, &item, "SELECT * FROM merchandise_items WHERE id = $1", merchandiseID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetDefaultVariationOptionTx resolves the implicit option of a merchandise
// item inside the enclosing transaction.
func (s *Store) GetDefaultVariationOptionTx(ctx context.Context, tx *sqlx.Tx, merchandiseID int64) (*models.VariationOption, error) {
	var opt models.VariationOption
	err := tx.GetContext(ctx, &opt, `
		SELECT vo.* FROM variation_options vo
		JOIN variation_types vt ON vt.id = vo.variation_type_id
		WHERE vt.merchandise_id = $1
		ORDER BY vo.id
		LIMIT 1`, merchandiseID)
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// CheckDistanceCapacity reads the current capacity status of a distance.
func (s *Store) CheckDistanceCapacity(ctx context.Context, distanceID int64) (*models.CapacityStatus, error) {
	distance, err := s.GetDistanceByID(ctx, distanceID)
	if err != nil {
		return nil, err
	}
	status := ComputeCapacityStatus(distance)
	return &status, nil
}

// ReserveDistanceSlot conditionally increments the participant counter of a
// distance inside the enclosing transaction. Zero rows affected means the
// distance is full.
func (s *Store) ReserveDistanceSlot(ctx context.Context, tx *sqlx.Tx, distanceID int64) error {
	start := time.Now()
	defer func() {
		util.SlotReserveLatency.Observe(time.Since(start).Seconds())
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE distances
		SET current_participant_count = current_participant_count + 1
		WHERE id = $1
		  AND (entry_limit IS NULL OR current_participant_count < entry_limit)`,
		distanceID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		util.CapacityRejectionsTotal.Inc()
		return regerr.New(regerr.KindConflict, regerr.CodeCapacityExceeded,
			"distance %d has reached its entry limit", distanceID)
	}
	return nil
}

// ReleaseDistanceSlot decrements the participant counter of a distance when a
// ticket is cancelled, never driving it below zero.
func (s *Store) ReleaseDistanceSlot(ctx context.Context, tx *sqlx.Tx, distanceID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE distances
		SET current_participant_count = current_participant_count - 1
		WHERE id = $1 AND current_participant_count > 0`,
		distanceID)
	return err
}

// DecrementStock conditionally decrements the stock of a variation option
// inside the enclosing transaction. Zero rows affected means the requested
// quantity is no longer available.
func (s *Store) DecrementStock(ctx context.Context, tx *sqlx.Tx, optionID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE variation_options
		SET current_stock = current_stock - $2
		WHERE id = $1 AND current_stock >= $2`,
		optionID, quantity)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		util.StockRejectionsTotal.Inc()

		remaining := 0
		_ = tx.GetContext(ctx, &remaining,
			"SELECT current_stock FROM variation_options WHERE id = $1", optionID)
		return regerr.New(regerr.KindConflict, regerr.CodeInsufficientStock,
			"insufficient stock for variation option %d: requested %d, remaining %d",
			optionID, quantity, remaining)
	}
	return nil
}

// RestoreStock returns cancelled merchandise quantities to a variation option.
func (s *Store) RestoreStock(ctx context.Context, tx *sqlx.Tx, optionID int64, quantity int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE variation_options
		SET current_stock = current_stock + $2
		WHERE id = $1`,
		optionID, quantity)
	return err
}
