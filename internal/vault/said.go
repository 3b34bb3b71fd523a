package vault

import (
	"fmt"
	"time"
)

// IdentityDetails are the attributes extractable from a valid South African
// ID number: YYMMDD SSSS C A Z.
type IdentityDetails struct {
	DateOfBirth time.Time
	Gender      string // "male" or "female"
	Citizenship string // "citizen" or "permanent_resident"
}

// Gender / citizenship values extracted from an ID number
const (
	GenderMale   = "male"
	GenderFemale = "female"

	CitizenshipCitizen           = "citizen"
	CitizenshipPermanentResident = "permanent_resident"
)

// dobTolerance allows the participant-entered date of birth to differ from
// the ID-derived one by timezone-only discrepancies.
const dobTolerance = 24 * time.Hour

// ParseSAID validates the structure and checksum of a South African ID
// number and extracts its embedded attributes.
func ParseSAID(id string, now time.Time) (*IdentityDetails, error) {
	if len(id) != 13 {
		return nil, fmt.Errorf("ID number must be 13 digits, got %d", len(id))
	}
	digits := make([]int, 13)
	for i, r := range id {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("ID number must contain only digits")
		}
		digits[i] = int(r - '0')
	}

	if !luhnValid(digits) {
		return nil, fmt.Errorf("ID number failed checksum validation")
	}

	yy := digits[0]*10 + digits[1]
	month := digits[2]*10 + digits[3]
	day := digits[4]*10 + digits[5]
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("ID number encodes an invalid birth month")
	}

	// Two-digit years that would place the birth in the future belong to the
	// previous century.
	year := 2000 + yy
	if year > now.Year() {
		year -= 100
	}

	dob := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dob.Day() != day || dob.Month() != time.Month(month) {
		return nil, fmt.Errorf("ID number encodes an invalid birth date")
	}

	sequence := digits[6]*1000 + digits[7]*100 + digits[8]*10 + digits[9]
	gender := GenderFemale
	if sequence >= 5000 {
		gender = GenderMale
	}

	citizenship := CitizenshipCitizen
	if digits[10] == 1 {
		citizenship = CitizenshipPermanentResident
	}

	return &IdentityDetails{
		DateOfBirth: dob,
		Gender:      gender,
		Citizenship: citizenship,
	}, nil
}

// MatchesDateOfBirth reports whether the ID-derived date of birth agrees with
// the participant-entered one within the tolerance.
func (d *IdentityDetails) MatchesDateOfBirth(entered time.Time) bool {
	enteredDay := time.Date(entered.Year(), entered.Month(), entered.Day(), 0, 0, 0, 0, time.UTC)
	diff := d.DateOfBirth.Sub(enteredDay)
	if diff < 0 {
		diff = -diff
	}
	return diff <= dobTolerance
}

// luhnValid runs the Luhn algorithm over all 13 digits, the last being the
// check digit.
func luhnValid(digits []int) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
