package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"registration-service/internal/regerr"
)

// RegisterRequest is one shopping-cart-like registration submission.
// Field-presence validation happens once here, at the boundary.
type RegisterRequest struct {
	EventID int64 `json:"event_id"`

	// Account holder. UserID is set when the caller is authenticated,
	// otherwise Email (and optionally Password) drive account resolution.
	UserID               int64  `json:"-"`
	AccountHolderEmail   string `json:"account_holder_email"`
	AccountHolderName    string `json:"account_holder_name"`
	AccountHolderSurname string `json:"account_holder_surname"`
	AccountHolderMobile  string `json:"account_holder_mobile,omitempty"`
	Password             string `json:"password,omitempty"`

	Participants []ParticipantEntry `json:"participants"`
}

// ParticipantEntry pairs one participant with the distance they enter.
type ParticipantEntry struct {
	DistanceID int64 `json:"distance_id"`
	// AdjustedPrice, when present, is the client's pre-computed discounted
	// price and is used as-is.
	AdjustedPrice *decimal.Decimal `json:"adjusted_price,omitempty"`
	Participant   ParticipantInput `json:"participant"`
}

// ParticipantInput carries one participant's personal, medical and legal data.
type ParticipantInput struct {
	FirstName              string            `json:"first_name"`
	LastName               string            `json:"last_name"`
	Email                  string            `json:"email"`
	Mobile                 string            `json:"mobile,omitempty"`
	DateOfBirth            time.Time         `json:"date_of_birth"`
	Gender                 string            `json:"gender,omitempty"`
	Disabled               bool              `json:"disabled,omitempty"`
	MedicalAidName         string            `json:"medical_aid_name,omitempty"`
	MedicalAidNumber       string            `json:"medical_aid_number,omitempty"`
	EmergencyContactName   string            `json:"emergency_contact_name,omitempty"`
	EmergencyContactMobile string            `json:"emergency_contact_mobile,omitempty"`
	RequiresTempLicense    bool              `json:"requires_temp_license,omitempty"`
	PermanentLicenseNumber string            `json:"permanent_license_number,omitempty"`
	IDDocumentNumber       string            `json:"id_document_number,omitempty"`
	IDDocumentType         string            `json:"id_document_type,omitempty"`
	CitizenshipStatus      string            `json:"citizenship_status,omitempty"`
	Merchandise            []MerchandiseLine `json:"merchandise,omitempty"`
}

// MerchandiseLine is one requested merchandise variation with quantity.
type MerchandiseLine struct {
	MerchandiseID     int64           `json:"merchandise_id"`
	VariationOptionID int64           `json:"variation_option_id"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// Validate performs boundary validation of the whole submission.
func (r *RegisterRequest) Validate() error {
	if r.EventID == 0 {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "event_id is required")
	}
	if len(r.Participants) == 0 {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "at least one participant is required")
	}
	if r.UserID == 0 && strings.TrimSpace(r.AccountHolderEmail) == "" {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "account holder email is required for unauthenticated registration")
	}
	for i := range r.Participants {
		if err := r.Participants[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *ParticipantEntry) validate() error {
	if e.DistanceID == 0 {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "distance_id is required for every participant")
	}
	p := &e.Participant
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "participant first and last name are required")
	}
	if p.DateOfBirth.IsZero() {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "participant date of birth is required")
	}
	if p.IDDocumentType != "" && p.IDDocumentType != IDDocumentTypeSAID && p.IDDocumentType != IDDocumentTypePassport {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "unknown id_document_type %q", p.IDDocumentType)
	}
	for _, line := range p.Merchandise {
		if line.MerchandiseID == 0 || line.Quantity <= 0 {
			return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "merchandise lines need a merchandise_id and a positive quantity")
		}
	}
	return nil
}

// CheckDuplicateRequest asks whether a participant already holds an active
// ticket for an event.
type CheckDuplicateRequest struct {
	EventID     int64     `json:"event_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

// Validate checks the duplicate lookup fields.
func (r *CheckDuplicateRequest) Validate() error {
	if r.EventID == 0 {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "event_id is required")
	}
	if r.Email == "" && r.FirstName == "" && r.LastName == "" {
		return regerr.New(regerr.KindValidation, regerr.CodeMissingFields, "at least one of email or name is required")
	}
	return nil
}

// AuthResult is the session credential issued for a newly created account.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterResult is the success response of a registration submission.
type RegisterResult struct {
	Order   *Order      `json:"order"`
	Tickets []Ticket    `json:"tickets"`
	Auth    *AuthResult `json:"auth,omitempty"`
}

// CapacityStatus reports distance utilization to the client.
type CapacityStatus struct {
	DistanceID     int64  `json:"distance_id"`
	Status         string `json:"status"`
	AvailableSpots *int   `json:"available_spots,omitempty"`
}
