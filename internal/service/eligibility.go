package service

import (
	"context"
	"strings"
	"time"

	"registration-service/internal/models"
	"registration-service/internal/regerr"
	"registration-service/internal/store"
	"registration-service/internal/util"
)

// defaultSeniorAge applies when a distance offers free senior entry without
// its own threshold.
const defaultSeniorAge = 65

// duplicateFieldThreshold is the number of fields (of email, first name, last
// name, date of birth) that must match an existing active ticket before a
// participant counts as already registered. 3-of-4 is a deliberate tolerance
// for minor data-entry differences, not an approximation.
const duplicateFieldThreshold = 3

// ComputeAge returns whole calendar years between dateOfBirth and asOf,
// decrementing when asOf's month/day precedes the birth month/day.
func ComputeAge(dateOfBirth, asOf time.Time) int {
	age := asOf.Year() - dateOfBirth.Year()
	if asOf.Month() < dateOfBirth.Month() ||
		(asOf.Month() == dateOfBirth.Month() && asOf.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// ValidateMinimumAge enforces a distance's minimum age as of the given date.
func ValidateMinimumAge(distance *models.Distance, dateOfBirth, asOf time.Time) error {
	if distance.MinAge <= 0 {
		return nil
	}
	age := ComputeAge(dateOfBirth, asOf)
	if age < distance.MinAge {
		return regerr.New(regerr.KindValidation, regerr.CodeAgeBelowMinimum,
			"participant is %d, minimum age for %s is %d", age, distance.Name, distance.MinAge)
	}
	return nil
}

// FreeEntry is the result of a free-entry eligibility check.
type FreeEntry struct {
	Free   bool
	Reason string
}

// EvaluateFreeEntry decides whether a participant enters a distance for free.
// The disability check takes precedence over the senior check.
func EvaluateFreeEntry(distance *models.Distance, disabled bool, dateOfBirth, asOf time.Time) FreeEntry {
	if disabled && distance.FreeForDisabled {
		return FreeEntry{Free: true, Reason: "disability"}
	}
	if distance.FreeForSeniors {
		threshold := distance.SeniorAgeThreshold
		if threshold <= 0 {
			threshold = defaultSeniorAge
		}
		if ComputeAge(dateOfBirth, asOf) >= threshold {
			return FreeEntry{Free: true, Reason: "senior"}
		}
	}
	return FreeEntry{}
}

// DuplicateChecker finds existing registrations via fuzzy field matching.
type DuplicateChecker struct {
	store *store.Store
}

// NewDuplicateChecker creates a duplicate checker over the given store.
func NewDuplicateChecker(st *store.Store) *DuplicateChecker {
	return &DuplicateChecker{store: st}
}

// FindExistingRegistration returns the first active ticket for the event
// matching at least duplicateFieldThreshold of the four identity fields, or
// nil when the participant is not yet registered.
func (dc *DuplicateChecker) FindExistingRegistration(ctx context.Context, req *models.CheckDuplicateRequest) (*models.Ticket, error) {
	tickets, err := dc.store.GetActiveTicketsForEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	for i := range tickets {
		if matchScore(&tickets[i], req) >= duplicateFieldThreshold {
			util.DuplicateDetectionsTotal.Inc()
			return &tickets[i], nil
		}
	}
	return nil, nil
}

// matchScore counts matching fields: email and names case-insensitively,
// dates of birth by calendar day.
func matchScore(ticket *models.Ticket, req *models.CheckDuplicateRequest) int {
	score := 0
	if req.Email != "" && strings.EqualFold(strings.TrimSpace(ticket.Email), strings.TrimSpace(req.Email)) {
		score++
	}
	if req.FirstName != "" && strings.EqualFold(strings.TrimSpace(ticket.FirstName), strings.TrimSpace(req.FirstName)) {
		score++
	}
	if req.LastName != "" && strings.EqualFold(strings.TrimSpace(ticket.LastName), strings.TrimSpace(req.LastName)) {
		score++
	}
	if !req.DateOfBirth.IsZero() && sameDay(ticket.DateOfBirth, req.DateOfBirth) {
		score++
	}
	return score
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
