package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a race/event an organiser has published
type Event struct {
	ID              int64           `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	OrganiserName   string          `db:"organiser_name" json:"organiser_name"`
	OrganiserEmail  string          `db:"organiser_email" json:"organiser_email"`
	LicenseRequired bool            `db:"license_required" json:"license_required"`
	LicenseType     string          `db:"license_type" json:"license_type,omitempty"`
	TempLicenseFee  decimal.Decimal `db:"temp_license_fee" json:"temp_license_fee"`
	FreeForDisabled bool            `db:"free_for_disabled" json:"free_for_disabled"`
	StartsAt        time.Time       `db:"starts_at" json:"starts_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Distance represents a race sub-category with its own price, capacity and age rules
type Distance struct {
	ID                      int64           `db:"id" json:"id"`
	EventID                 int64           `db:"event_id" json:"event_id"`
	Name                    string          `db:"name" json:"name"`
	Price                   decimal.Decimal `db:"price" json:"price"`
	MinAge                  int             `db:"min_age" json:"min_age"`
	EntryLimit              *int            `db:"entry_limit" json:"entry_limit,omitempty"`
	CurrentParticipantCount int             `db:"current_participant_count" json:"current_participant_count"`
	FreeForSeniors          bool            `db:"free_for_seniors" json:"free_for_seniors"`
	FreeForDisabled         bool            `db:"free_for_disabled" json:"free_for_disabled"`
	SeniorAgeThreshold      int             `db:"senior_age_threshold" json:"senior_age_threshold"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
}

// MerchandiseItem represents a purchasable item offered with an event
type MerchandiseItem struct {
	ID        int64           `db:"id" json:"id"`
	EventID   int64           `db:"event_id" json:"event_id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// VariationType groups the options of a merchandise item (e.g. "Size")
type VariationType struct {
	ID            int64  `db:"id" json:"id"`
	MerchandiseID int64  `db:"merchandise_id" json:"merchandise_id"`
	Name          string `db:"name" json:"name"`
}

// VariationOption is the unit of stock tracking (e.g. size "L")
type VariationOption struct {
	ID              int64  `db:"id" json:"id"`
	VariationTypeID int64  `db:"variation_type_id" json:"variation_type_id"`
	Value           string `db:"value" json:"value"`
	CurrentStock    int    `db:"current_stock" json:"current_stock"`
}

// Order is the billing unit grouping all tickets from one submission
type Order struct {
	ID              int64           `db:"id" json:"id"`
	Reference       string          `db:"reference" json:"reference"`
	EventID         int64           `db:"event_id" json:"event_id"`
	AccountHolderID int64           `db:"account_holder_id" json:"account_holder_id"`
	ContactName     string          `db:"contact_name" json:"contact_name"`
	ContactEmail    string          `db:"contact_email" json:"contact_email"`
	ContactMobile   string          `db:"contact_mobile" json:"contact_mobile,omitempty"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Ticket is one participant's entry into one distance
type Ticket struct {
	ID                     int64           `db:"id" json:"id"`
	OrderID                int64           `db:"order_id" json:"order_id"`
	EventID                int64           `db:"event_id" json:"event_id"`
	DistanceID             int64           `db:"distance_id" json:"distance_id"`
	FirstName              string          `db:"first_name" json:"first_name"`
	LastName               string          `db:"last_name" json:"last_name"`
	Email                  string          `db:"email" json:"email"`
	Mobile                 string          `db:"mobile" json:"mobile,omitempty"`
	DateOfBirth            time.Time       `db:"date_of_birth" json:"date_of_birth"`
	Gender                 string          `db:"gender" json:"gender,omitempty"`
	Disabled               bool            `db:"disabled" json:"disabled"`
	MedicalAidName         string          `db:"medical_aid_name" json:"medical_aid_name,omitempty"`
	MedicalAidNumber       string          `db:"medical_aid_number" json:"medical_aid_number,omitempty"`
	EmergencyContactName   string          `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactMobile string          `db:"emergency_contact_mobile" json:"emergency_contact_mobile,omitempty"`
	Amount                 decimal.Decimal `db:"amount" json:"amount"`
	Status                 string          `db:"status" json:"status"`
	IDDocumentType         string          `db:"id_document_type" json:"id_document_type,omitempty"`
	IDNumberEncrypted      string          `db:"id_number_encrypted" json:"-"`
	IDNumberIV             string          `db:"id_number_iv" json:"-"`
	IDNumberAuthTag        string          `db:"id_number_auth_tag" json:"-"`
	IDNumberHash           string          `db:"id_number_hash" json:"-"`
	PassportNumber         string          `db:"passport_number" json:"-"`
	CitizenshipStatus      string          `db:"citizenship_status" json:"citizenship_status,omitempty"`
	RequiresTempLicense    bool            `db:"requires_temp_license" json:"requires_temp_license"`
	PermanentLicenseNumber string          `db:"permanent_license_number" json:"permanent_license_number,omitempty"`
	CreatedAt              time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updated_at"`
}

// TicketMerchandise joins a ticket to a purchased merchandise variation
type TicketMerchandise struct {
	ID                int64           `db:"id" json:"id"`
	TicketID          int64           `db:"ticket_id" json:"ticket_id"`
	MerchandiseID     int64           `db:"merchandise_id" json:"merchandise_id"`
	VariationOptionID int64           `db:"variation_option_id" json:"variation_option_id"`
	Quantity          int             `db:"quantity" json:"quantity"`
	UnitPrice         decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice        decimal.Decimal `db:"total_price" json:"total_price"`
}

// User is an account holder
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserProfile holds the account holder's personal details
type UserProfile struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Mobile      string     `db:"mobile" json:"mobile,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// SavedParticipant is a reusable participant template cached under a profile
type SavedParticipant struct {
	ID          int64     `db:"id" json:"id"`
	ProfileID   int64     `db:"profile_id" json:"profile_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Email       string    `db:"email" json:"email"`
	Mobile      string    `db:"mobile" json:"mobile,omitempty"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserLicense is a sport-type-scoped permanent license on file
type UserLicense struct {
	ID            int64     `db:"id" json:"id"`
	ProfileID     int64     `db:"profile_id" json:"profile_id"`
	SportType     string    `db:"sport_type" json:"sport_type"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	ExpiryDate    time.Time `db:"expiry_date" json:"expiry_date"`
	IsActive      bool      `db:"is_active" json:"is_active"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Ticket statuses
const (
	TicketStatusActive    = "active"
	TicketStatusCancelled = "cancelled"
	TicketStatusRefunded  = "refunded"
)

// Identity document types
const (
	IDDocumentTypeSAID     = "sa_id"
	IDDocumentTypePassport = "passport"
)

// Capacity statuses reported by the ledger
const (
	CapacityUnlimited  = "unlimited"
	CapacityAvailable  = "available"
	CapacityAlmostFull = "almost_full"
	CapacityFull       = "full"
)
