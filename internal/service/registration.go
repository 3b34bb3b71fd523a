package service

import (
	"context"
	"fmt"
	"time"

	"registration-service/internal/models"
	"registration-service/internal/redisclient"
	"registration-service/internal/regerr"
	"registration-service/internal/store"
	"registration-service/internal/util"
	"registration-service/internal/vault"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventPublisher publishes post-commit integration events. Publish failures
// are logged and never affect the registration result.
type EventPublisher interface {
	PublishTicketIssued(ctx context.Context, event *models.TicketIssuedEvent) error
	PublishOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishTicketCancelled(ctx context.Context, event *models.TicketCancelledEvent) error
}

// RegistrationService turns one registration submission into one order, one
// ticket per participant-distance, decremented stock and encrypted identity
// documents, inside a single database transaction.
type RegistrationService struct {
	store       *store.Store
	vault       *vault.Vault
	provisioner *AccountProvisioner
	sessions    *SessionIssuer
	duplicates  *DuplicateChecker
	publisher   EventPublisher
	redis       *redisclient.Client
	capacityTTL time.Duration
	logger      *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	st *store.Store,
	piiVault *vault.Vault,
	provisioner *AccountProvisioner,
	sessions *SessionIssuer,
	publisher EventPublisher,
	redis *redisclient.Client,
	capacityTTL time.Duration,
) *RegistrationService {
	return &RegistrationService{
		store:       st,
		vault:       piiVault,
		provisioner: provisioner,
		sessions:    sessions,
		duplicates:  NewDuplicateChecker(st),
		publisher:   publisher,
		redis:       redis,
		capacityTTL: capacityTTL,
		logger:      util.GetLogger(),
	}
}

// pricedParticipant carries one participant's computed amounts and resolved
// merchandise lines through the transactional window.
type pricedParticipant struct {
	entry      *models.ParticipantEntry
	distance   *models.Distance
	amount     decimal.Decimal
	licenseFee decimal.Decimal
	needsTemp  bool
	licenseNum string
	merch      []resolvedLine
}

type resolvedLine struct {
	merchandiseID     int64
	variationOptionID int64
	quantity          int
	unitPrice         decimal.Decimal
	totalPrice        decimal.Decimal
}

// Register processes one registration submission end to end.
func (rs *RegistrationService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error) {
	ctx, span := util.StartSpan(ctx, "RegistrationService.Register")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RegistrationLatency.Observe(time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// Account resolution happens outside the transaction: a newly created
	// account must stay durable even if the registration fails below.
	account, err := rs.provisioner.ResolveOrCreateAccount(ctx, &ProvisionInput{
		UserID:    req.UserID,
		Email:     req.AccountHolderEmail,
		FirstName: req.AccountHolderName,
		LastName:  req.AccountHolderSurname,
		Mobile:    req.AccountHolderMobile,
		Password:  req.Password,
	})
	if err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("account").Inc()
		return nil, err
	}

	event, err := rs.store.GetEventByID(ctx, req.EventID)
	if err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, err
	}

	for i := range req.Participants {
		p := &req.Participants[i].Participant
		existing, err := rs.duplicates.FindExistingRegistration(ctx, &models.CheckDuplicateRequest{
			EventID:     req.EventID,
			Email:       p.Email,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth,
		})
		if err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, err
		}
		if existing != nil {
			util.RegistrationsFailedTotal.WithLabelValues("duplicate").Inc()
			return nil, regerr.New(regerr.KindConflict, regerr.CodeDuplicateRegistration,
				"%s %s is already registered for this event", p.FirstName, p.LastName)
		}
	}

	result, err := rs.registerTx(ctx, req, account, event)
	if err != nil {
		return nil, err
	}

	util.RegistrationsCreatedTotal.Inc()
	rs.logger.Info("Registration committed",
		zap.String("order_reference", result.Order.Reference),
		zap.Int("tickets", len(result.Tickets)))

	// Best-effort side effects run after the transaction result is known.
	rs.postCommit(ctx, req, account, event, result)

	return result, nil
}

// registerTx is the transactional window: steps from the stock pre-check to
// commit. Any error rolls the transaction back and is returned verbatim; the
// deferred Rollback releases the connection on every exit path.
func (rs *RegistrationService) registerTx(ctx context.Context, req *models.RegisterRequest, account *Account, event *models.Event) (*models.RegisterResult, error) {
	tx, err := rs.store.DB().BeginTxx(ctx, nil)
	if err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}
	defer tx.Rollback()

	priced := make([]pricedParticipant, 0, len(req.Participants))
	now := time.Now()

	for i := range req.Participants {
		entry := &req.Participants[i]
		distance, err := rs.store.GetDistanceTx(ctx, tx, entry.DistanceID)
		if err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, err
		}
		if distance.EventID != event.ID {
			util.RegistrationsFailedTotal.WithLabelValues("validation").Inc()
			return nil, regerr.New(regerr.KindValidation, regerr.CodeMissingFields,
				"distance %d does not belong to event %d", distance.ID, event.ID)
		}

		if err := ValidateMinimumAge(distance, entry.Participant.DateOfBirth, now); err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("validation").Inc()
			return nil, err
		}

		pp := pricedParticipant{entry: entry, distance: distance}
		if err := rs.resolveMerchandise(ctx, tx, &pp); err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("stock").Inc()
			return nil, err
		}
		priced = append(priced, pp)
	}

	// Stock pre-check. Fails fast before any capacity reservation so a
	// submission that cannot complete holds nothing.
	for i := range priced {
		for _, line := range priced[i].merch {
			opt, err := rs.store.GetVariationOptionTx(ctx, tx, line.variationOptionID)
			if err != nil {
				util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
				return nil, err
			}
			if opt.CurrentStock < line.quantity {
				util.RegistrationsFailedTotal.WithLabelValues("stock").Inc()
				return nil, regerr.New(regerr.KindConflict, regerr.CodeInsufficientStock,
					"insufficient stock for variation option %d: requested %d, remaining %d",
					opt.ID, line.quantity, opt.CurrentStock)
			}
		}
	}

	// Capacity pre-check per distinct distance.
	requested := make(map[int64]int)
	for i := range priced {
		requested[priced[i].distance.ID]++
	}
	for distanceID, count := range requested {
		distance, err := rs.store.GetDistanceTx(ctx, tx, distanceID)
		if err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, err
		}
		status := store.ComputeCapacityStatus(distance)
		if status.Status == models.CapacityFull ||
			(status.AvailableSpots != nil && *status.AvailableSpots < count) {
			util.RegistrationsFailedTotal.WithLabelValues("capacity").Inc()
			return nil, regerr.New(regerr.KindConflict, regerr.CodeCapacityExceeded,
				"distance %d has reached its entry limit", distanceID)
		}
	}

	// Price computation.
	participantAmounts := make([]decimal.Decimal, 0, len(priced))
	merchandiseTotals := make([]decimal.Decimal, 0)
	licenseFees := make([]decimal.Decimal, 0)

	for i := range priced {
		pp := &priced[i]
		p := &pp.entry.Participant

		free := EvaluateFreeEntry(pp.distance, p.Disabled, p.DateOfBirth, now)
		pp.amount = PriceForParticipant(pp.distance, pp.entry.AdjustedPrice, free)
		participantAmounts = append(participantAmounts, pp.amount)

		pp.licenseNum = p.PermanentLicenseNumber
		if event.LicenseRequired && pp.licenseNum == "" && !p.RequiresTempLicense {
			license, err := rs.store.GetActiveLicense(ctx, account.Profile.ID, event.LicenseType, now)
			if err != nil {
				util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
				return nil, err
			}
			if license != nil {
				pp.licenseNum = license.LicenseNumber
			}
		}

		pp.needsTemp = p.RequiresTempLicense && event.LicenseRequired && pp.licenseNum == ""
		if pp.needsTemp {
			pp.licenseFee = event.TempLicenseFee
			licenseFees = append(licenseFees, pp.licenseFee)
		}

		for _, line := range pp.merch {
			merchandiseTotals = append(merchandiseTotals, line.totalPrice)
		}
	}

	totalAmount := OrderTotal(participantAmounts, merchandiseTotals, licenseFees)

	order := &models.Order{
		Reference:       uuid.New().String(),
		EventID:         event.ID,
		AccountHolderID: account.User.ID,
		ContactName:     fmt.Sprintf("%s %s", account.Profile.FirstName, account.Profile.LastName),
		ContactEmail:    account.User.Email,
		ContactMobile:   account.Profile.Mobile,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
	}
	if order.ContactEmail == "" {
		order.ContactEmail = req.AccountHolderEmail
	}
	if err := rs.store.CreateOrder(ctx, tx, order); err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	tickets := make([]models.Ticket, 0, len(priced))
	for i := range priced {
		ticket, err := rs.issueTicket(ctx, tx, order, event, &priced[i])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	if err := tx.Commit(); err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return &models.RegisterResult{Order: order, Tickets: tickets}, nil
}

// issueTicket reserves the distance slot, encrypts the identity document,
// inserts the ticket and attaches merchandise with the matching stock
// decrements. Stock failures here are hard aborts even though the pre-check
// passed: the pre-check and the transactional decrement are independent races.
func (rs *RegistrationService) issueTicket(ctx context.Context, tx *sqlx.Tx, order *models.Order, event *models.Event, pp *pricedParticipant) (*models.Ticket, error) {
	p := &pp.entry.Participant

	if err := rs.store.ReserveDistanceSlot(ctx, tx, pp.distance.ID); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		OrderID:                order.ID,
		EventID:                event.ID,
		DistanceID:             pp.distance.ID,
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Email:                  p.Email,
		Mobile:                 p.Mobile,
		DateOfBirth:            p.DateOfBirth,
		Gender:                 p.Gender,
		Disabled:               p.Disabled,
		MedicalAidName:         p.MedicalAidName,
		MedicalAidNumber:       p.MedicalAidNumber,
		EmergencyContactName:   p.EmergencyContactName,
		EmergencyContactMobile: p.EmergencyContactMobile,
		Amount:                 AddTempLicenseFee(pp.amount, pp.needsTemp, pp.licenseFee),
		Status:                 models.TicketStatusActive,
		IDDocumentType:         p.IDDocumentType,
		CitizenshipStatus:      p.CitizenshipStatus,
		RequiresTempLicense:    pp.needsTemp,
		PermanentLicenseNumber: pp.licenseNum,
	}

	if err := rs.applyIdentityDocument(ticket, p); err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if err := rs.store.CreateTicket(ctx, tx, ticket); err != nil {
		util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	util.TicketsIssuedTotal.Inc()

	for _, line := range pp.merch {
		tm := &models.TicketMerchandise{
			TicketID:          ticket.ID,
			MerchandiseID:     line.merchandiseID,
			VariationOptionID: line.variationOptionID,
			Quantity:          line.quantity,
			UnitPrice:         line.unitPrice,
			TotalPrice:        line.totalPrice,
		}
		if err := rs.store.CreateTicketMerchandise(ctx, tx, tm); err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, fmt.Errorf("failed to attach merchandise: %w", err)
		}
		if err := rs.store.DecrementStock(ctx, tx, line.variationOptionID, line.quantity); err != nil {
			util.RegistrationsFailedTotal.WithLabelValues("stock").Inc()
			return nil, err
		}
	}

	return ticket, nil
}

// applyIdentityDocument validates and encrypts a national ID when supplied.
// Passport numbers are stored as-is and not validated.
func (rs *RegistrationService) applyIdentityDocument(ticket *models.Ticket, p *models.ParticipantInput) error {
	if p.IDDocumentNumber == "" {
		return nil
	}

	if p.IDDocumentType == models.IDDocumentTypePassport {
		ticket.PassportNumber = p.IDDocumentNumber
		return nil
	}

	details, err := vault.ParseSAID(p.IDDocumentNumber, time.Now())
	if err != nil {
		return regerr.New(regerr.KindValidation, regerr.CodeIdentityInvalid,
			"invalid ID number: %v", err)
	}
	if !details.MatchesDateOfBirth(p.DateOfBirth) {
		return regerr.New(regerr.KindValidation, regerr.CodeIdentityMismatch,
			"ID number date of birth does not match the entered date of birth")
	}

	enc, err := rs.vault.Encrypt(p.IDDocumentNumber)
	if err != nil {
		return fmt.Errorf("failed to encrypt identity document: %w", err)
	}
	ticket.IDNumberEncrypted = enc.Ciphertext
	ticket.IDNumberIV = enc.IV
	ticket.IDNumberAuthTag = enc.AuthTag
	ticket.IDNumberHash = rs.vault.Hash(p.IDDocumentNumber)

	if ticket.Gender == "" {
		ticket.Gender = details.Gender
	}
	if ticket.CitizenshipStatus == "" {
		ticket.CitizenshipStatus = details.Citizenship
	}
	return nil
}

// resolveMerchandise maps requested lines onto variation options. Merchandise
// without an explicit variation option falls back to the item's implicit
// default option, so the ledger only ever tracks option-level stock.
func (rs *RegistrationService) resolveMerchandise(ctx context.Context, tx *sqlx.Tx, pp *pricedParticipant) error {
	for _, line := range pp.entry.Participant.Merchandise {
		item, err := rs.store.GetMerchandiseTx(ctx, tx, line.MerchandiseID)
		if err != nil {
			return err
		}

		optionID := line.VariationOptionID
		if optionID == 0 {
			opt, err := rs.store.GetDefaultVariationOptionTx(ctx, tx, line.MerchandiseID)
			if err != nil {
				return err
			}
			optionID = opt.ID
		}

		unitPrice := line.UnitPrice
		if unitPrice.IsZero() || unitPrice.IsNegative() {
			unitPrice = item.Price
		}

		pp.merch = append(pp.merch, resolvedLine{
			merchandiseID:     line.MerchandiseID,
			variationOptionID: optionID,
			quantity:          line.Quantity,
			unitPrice:         unitPrice,
			totalPrice:        MerchandiseLineTotal(unitPrice, line.Quantity),
		})
	}
	return nil
}

// postCommit runs the best-effort side effects: session issuance for new
// accounts, saved-participant caching, capacity cache invalidation and
// confirmation events. Each is independently fallible and never affects the
// success response.
func (rs *RegistrationService) postCommit(ctx context.Context, req *models.RegisterRequest, account *Account, event *models.Event, result *models.RegisterResult) {
	if account.IsNew && rs.sessions != nil {
		auth, err := rs.sessions.IssueSession(ctx, account.User)
		if err != nil {
			rs.logger.Error("Failed to issue session for new account",
				zap.Int64("user_id", account.User.ID), zap.Error(err))
		} else {
			result.Auth = auth
		}
	}

	for i := range result.Tickets {
		ticket := &result.Tickets[i]
		sp := &models.SavedParticipant{
			ProfileID:   account.Profile.ID,
			FirstName:   ticket.FirstName,
			LastName:    ticket.LastName,
			Email:       ticket.Email,
			Mobile:      ticket.Mobile,
			DateOfBirth: ticket.DateOfBirth,
		}
		exists, err := rs.store.HasSavedParticipant(ctx, account.Profile.ID, sp.FirstName, sp.LastName, sp.Email)
		if err == nil && !exists {
			err = rs.store.CreateSavedParticipant(ctx, sp)
		}
		if err != nil {
			rs.logger.Warn("Failed to save participant template",
				zap.String("email", sp.Email), zap.Error(err))
		}
	}

	if rs.redis != nil {
		seen := make(map[int64]bool)
		for i := range result.Tickets {
			distanceID := result.Tickets[i].DistanceID
			if seen[distanceID] {
				continue
			}
			seen[distanceID] = true
			if err := rs.redis.InvalidateCapacityStatus(ctx, distanceID); err != nil {
				rs.logger.Warn("Failed to invalidate capacity cache",
					zap.Int64("distance_id", distanceID), zap.Error(err))
			}
		}
	}

	rs.publishConfirmations(ctx, event, result)
}

// publishConfirmations dispatches one TicketIssued event per ticket and one
// OrderCompleted event, each failure logged per ticket, never retried
// synchronously.
func (rs *RegistrationService) publishConfirmations(ctx context.Context, event *models.Event, result *models.RegisterResult) {
	if rs.publisher == nil {
		return
	}

	for i := range result.Tickets {
		ticket := &result.Tickets[i]
		distanceName := ""
		if distance, err := rs.store.GetDistanceByID(ctx, ticket.DistanceID); err == nil {
			distanceName = distance.Name
		}

		evt := &models.TicketIssuedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTicketIssued,
				Timestamp: time.Now(),
			},
			OrderReference:   result.Order.Reference,
			TicketID:         ticket.ID,
			EventName:        event.Name,
			OrganiserName:    event.OrganiserName,
			OrganiserEmail:   event.OrganiserEmail,
			DistanceName:     distanceName,
			ParticipantName:  fmt.Sprintf("%s %s", ticket.FirstName, ticket.LastName),
			ParticipantEmail: ticket.Email,
			Amount:           ticket.Amount.StringFixed(2),
		}
		if err := rs.publisher.PublishTicketIssued(ctx, evt); err != nil {
			rs.logger.Error("Failed to publish TicketIssued event",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	completed := &models.OrderCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCompleted,
			Timestamp: time.Now(),
		},
		OrderReference: result.Order.Reference,
		OrderID:        result.Order.ID,
		EventName:      event.Name,
		TicketCount:    len(result.Tickets),
		TotalAmount:    result.Order.TotalAmount.StringFixed(2),
	}
	if err := rs.publisher.PublishOrderCompleted(ctx, completed); err != nil {
		rs.logger.Error("Failed to publish OrderCompleted event",
			zap.Int64("order_id", result.Order.ID), zap.Error(err))
	}
}

// CheckDuplicate reports whether a participant already holds an active ticket
// for an event.
func (rs *RegistrationService) CheckDuplicate(ctx context.Context, req *models.CheckDuplicateRequest) (bool, *models.Ticket, error) {
	if err := req.Validate(); err != nil {
		return false, nil, err
	}
	ticket, err := rs.duplicates.FindExistingRegistration(ctx, req)
	if err != nil {
		return false, nil, err
	}
	return ticket != nil, ticket, nil
}

// CapacityStatus reports a distance's capacity, serving a short-lived Redis
// snapshot when available. Advisory only: slot reservation always goes to
// the database.
func (rs *RegistrationService) CapacityStatus(ctx context.Context, distanceID int64) (*models.CapacityStatus, error) {
	if rs.redis != nil {
		if cached, err := rs.redis.GetCachedCapacityStatus(ctx, distanceID); err == nil && cached != nil {
			return cached, nil
		}
	}

	status, err := rs.store.CheckDistanceCapacity(ctx, distanceID)
	if err != nil {
		return nil, err
	}

	if rs.redis != nil {
		if err := rs.redis.CacheCapacityStatus(ctx, status, rs.capacityTTL); err != nil {
			rs.logger.Warn("Failed to cache capacity status",
				zap.Int64("distance_id", distanceID), zap.Error(err))
		}
	}
	return status, nil
}

// GetOrder retrieves an order with its tickets.
func (rs *RegistrationService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.Ticket, error) {
	order, err := rs.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	tickets, err := rs.store.GetTicketsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, tickets, nil
}

// MarkOrderPaid flips a pending order to paid and publishes OrderPaid.
// Payment mechanics live with an external provider; only the status
// transition happens here.
func (rs *RegistrationService) MarkOrderPaid(ctx context.Context, reference string) (*models.Order, error) {
	order, err := rs.store.GetOrderByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, regerr.New(regerr.KindConflict, regerr.CodeMissingFields,
			"order %s is %s, not pending", reference, order.Status)
	}

	if err := rs.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusPaid

	if rs.publisher != nil {
		evt := &models.OrderPaidEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPaid,
				Timestamp: time.Now(),
			},
			OrderReference: order.Reference,
			OrderID:        order.ID,
			TotalAmount:    order.TotalAmount.StringFixed(2),
		}
		if err := rs.publisher.PublishOrderPaid(ctx, evt); err != nil {
			rs.logger.Error("Failed to publish OrderPaid event",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

// CancelTicket cancels a ticket, releases its distance slot and restores its
// merchandise stock in one transaction. An order whose tickets are all
// cancelled becomes cancelled itself.
func (rs *RegistrationService) CancelTicket(ctx context.Context, ticketID int64) error {
	ctx, span := util.StartSpan(ctx, "RegistrationService.CancelTicket")
	defer span.End()

	tx, err := rs.store.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}
	defer tx.Rollback()

	ticket, err := rs.store.GetTicketForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status != models.TicketStatusActive {
		return regerr.New(regerr.KindConflict, regerr.CodeMissingFields,
			"ticket %d is %s, not active", ticketID, ticket.Status)
	}

	if err := rs.store.UpdateTicketStatusTx(ctx, tx, ticketID, models.TicketStatusCancelled); err != nil {
		return err
	}
	if err := rs.store.ReleaseDistanceSlot(ctx, tx, ticket.DistanceID); err != nil {
		return err
	}

	merch, err := rs.store.GetTicketMerchandiseTx(ctx, tx, ticketID)
	if err != nil {
		return err
	}
	for _, tm := range merch {
		if err := rs.store.RestoreStock(ctx, tx, tm.VariationOptionID, tm.Quantity); err != nil {
			return err
		}
	}

	remaining, err := rs.store.CountActiveTicketsForOrderTx(ctx, tx, ticket.OrderID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := rs.store.UpdateOrderStatusTx(ctx, tx, ticket.OrderID, models.OrderStatusCancelled); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}

	util.TicketsCancelledTotal.Inc()
	if rs.redis != nil {
		_ = rs.redis.InvalidateCapacityStatus(ctx, ticket.DistanceID)
	}

	if rs.publisher != nil {
		order, oerr := rs.store.GetOrderByID(ctx, ticket.OrderID)
		reference := ""
		if oerr == nil {
			reference = order.Reference
		}
		evt := &models.TicketCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTicketCancelled,
				Timestamp: time.Now(),
			},
			TicketID:       ticketID,
			OrderReference: reference,
			DistanceID:     ticket.DistanceID,
		}
		if err := rs.publisher.PublishTicketCancelled(ctx, evt); err != nil {
			rs.logger.Error("Failed to publish TicketCancelled event",
				zap.Int64("ticket_id", ticketID), zap.Error(err))
		}
	}

	return nil
}
