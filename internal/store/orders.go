package store

import (
	"context"
	"database/sql"
	"fmt"

	"registration-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder inserts a new order inside the registration transaction
func (s *Store) CreateOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (reference, event_id, account_holder_id, contact_name, contact_email, contact_mobile, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, order, query,
		order.Reference, order.EventID, order.AccountHolderID,
		order.ContactName, order.ContactEmail, order.ContactMobile,
		order.TotalAmount, order.Status)
}

// CreateTicket inserts a new ticket inside the registration transaction
func (s *Store) CreateTicket(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (
			order_id, event_id, distance_id,
			first_name, last_name, email, mobile, date_of_birth, gender, disabled,
			medical_aid_name, medical_aid_number,
			emergency_contact_name, emergency_contact_mobile,
			amount, status,
			id_document_type, id_number_encrypted, id_number_iv, id_number_auth_tag, id_number_hash,
			passport_number, citizenship_status,
			requires_temp_license, permanent_license_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, ticket, query,
		ticket.OrderID, ticket.EventID, ticket.DistanceID,
		ticket.FirstName, ticket.LastName, ticket.Email, ticket.Mobile,
		ticket.DateOfBirth, ticket.Gender, ticket.Disabled,
		ticket.MedicalAidName, ticket.MedicalAidNumber,
		ticket.EmergencyContactName, ticket.EmergencyContactMobile,
		ticket.Amount, ticket.Status,
		ticket.IDDocumentType, ticket.IDNumberEncrypted, ticket.IDNumberIV,
		ticket.IDNumberAuthTag, ticket.IDNumberHash,
		ticket.PassportNumber, ticket.CitizenshipStatus,
		ticket.RequiresTempLicense, ticket.PermanentLicenseNumber)
}

// CreateTicketMerchandise inserts a merchandise join row inside the
// registration transaction. The matching stock decrement happens alongside.
func (s *Store) CreateTicketMerchandise(ctx context.Context, tx *sqlx.Tx, tm *models.TicketMerchandise) error {
	query := `
		INSERT INTO ticket_merchandise (ticket_id, merchandise_id, variation_option_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return tx.GetContext(ctx, &tm.ID, query,
		tm.TicketID, tm.MerchandiseID, tm.VariationOptionID,
		tm.Quantity, tm.UnitPrice, tm.TotalPrice)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByReference retrieves an order by its public reference
func (s *Store) GetOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE reference = $1", reference)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", reference)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetTicketByID retrieves a ticket by ID
func (s *Store) GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.GetContext(ctx, &ticket, "SELECT * FROM tickets WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketsByOrderID retrieves all tickets for an order
func (s *Store) GetTicketsByOrderID(ctx context.Context, orderID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.SelectContext(ctx, &tickets,
		"SELECT * FROM tickets WHERE order_id = $1 ORDER BY id", orderID)
	return tickets, err
}

// GetTicketMerchandise retrieves the merchandise rows of a ticket
func (s *Store) GetTicketMerchandise(ctx context.Context, ticketID int64) ([]models.TicketMerchandise, error) {
	var rows []models.TicketMerchandise
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM ticket_merchandise WHERE ticket_id = $1", ticketID)
	return rows, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// UpdateTicketStatusTx updates a ticket's status inside a transaction
func (s *Store) UpdateTicketStatusTx(ctx context.Context, tx *sqlx.Tx, ticketID int64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2",
		status, ticketID)
	return err
}

// CountActiveTicketsForOrderTx counts the remaining active tickets of an
// order inside a transaction
func (s *Store) CountActiveTicketsForOrderTx(ctx context.Context, tx *sqlx.Tx, orderID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM tickets WHERE order_id = $1 AND status = $2",
		orderID, models.TicketStatusActive)
	return count, err
}

// UpdateOrderStatusTx updates order status inside a transaction
func (s *Store) UpdateOrderStatusTx(ctx context.Context, tx *sqlx.Tx, orderID int64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// GetTicketForUpdateTx locks and retrieves a ticket inside a transaction so
// concurrent cancellations serialize on the row.
func (s *Store) GetTicketForUpdateTx(ctx context.Context, tx *sqlx.Tx, ticketID int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := tx.GetContext(ctx, &ticket,
		"SELECT * FROM tickets WHERE id = $1 FOR UPDATE", ticketID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket not found: %d", ticketID)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketMerchandiseTx retrieves a ticket's merchandise rows inside a
// transaction
func (s *Store) GetTicketMerchandiseTx(ctx context.Context, tx *sqlx.Tx, ticketID int64) ([]models.TicketMerchandise, error) {
	var rows []models.TicketMerchandise
	err := tx.SelectContext(ctx, &rows,
		"SELECT * FROM ticket_merchandise WHERE ticket_id = $1", ticketID)
	return rows, err
}
