package models

import (
	"testing"
	"time"

	"registration-service/internal/regerr"

	"github.com/stretchr/testify/assert"
)

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		EventID:              1,
		AccountHolderEmail:   "holder@example.com",
		AccountHolderName:    "Sipho",
		AccountHolderSurname: "Dlamini",
		Participants: []ParticipantEntry{
			{
				DistanceID: 10,
				Participant: ParticipantInput{
					FirstName:   "Sipho",
					LastName:    "Dlamini",
					Email:       "sipho@example.com",
					DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	assert.NoError(t, validRegisterRequest().Validate())

	// An authenticated caller does not need an account holder email.
	req := validRegisterRequest()
	req.UserID = 42
	req.AccountHolderEmail = ""
	assert.NoError(t, req.Validate())
}

func TestRegisterRequestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing event", func(r *RegisterRequest) { r.EventID = 0 }},
		{"no participants", func(r *RegisterRequest) { r.Participants = nil }},
		{"unauthenticated without email", func(r *RegisterRequest) { r.AccountHolderEmail = "  " }},
		{"participant without distance", func(r *RegisterRequest) { r.Participants[0].DistanceID = 0 }},
		{"participant without name", func(r *RegisterRequest) { r.Participants[0].Participant.FirstName = "" }},
		{"participant without date of birth", func(r *RegisterRequest) {
			r.Participants[0].Participant.DateOfBirth = time.Time{}
		}},
		{"unknown document type", func(r *RegisterRequest) {
			r.Participants[0].Participant.IDDocumentType = "drivers_license"
		}},
		{"merchandise line without quantity", func(r *RegisterRequest) {
			r.Participants[0].Participant.Merchandise = []MerchandiseLine{{MerchandiseID: 5, Quantity: 0}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(req)
			err := req.Validate()
			assert.Error(t, err)
			assert.Equal(t, regerr.KindValidation, regerr.KindOf(err))
			assert.True(t, regerr.IsCode(err, regerr.CodeMissingFields))
		})
	}
}

func TestCheckDuplicateRequestValidate(t *testing.T) {
	req := &CheckDuplicateRequest{EventID: 1, Email: "sipho@example.com"}
	assert.NoError(t, req.Validate())

	req = &CheckDuplicateRequest{Email: "sipho@example.com"}
	assert.Error(t, req.Validate())

	req = &CheckDuplicateRequest{EventID: 1, DateOfBirth: time.Now()}
	assert.Error(t, req.Validate())
}
