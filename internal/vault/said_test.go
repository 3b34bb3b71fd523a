package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestParseSAIDExtractsDetails(t *testing.T) {
	details, err := ParseSAID("9001010001088", testNow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), details.DateOfBirth)
	assert.Equal(t, GenderFemale, details.Gender)
	assert.Equal(t, CitizenshipCitizen, details.Citizenship)
}

func TestParseSAIDMaleAndPermanentResident(t *testing.T) {
	details, err := ParseSAID("9001015000184", testNow)
	require.NoError(t, err)

	assert.Equal(t, GenderMale, details.Gender)
	assert.Equal(t, CitizenshipPermanentResident, details.Citizenship)
}

func TestParseSAIDCenturyInference(t *testing.T) {
	// 25 reads as 2025 because that is not in the future.
	details, err := ParseSAID("2501010001084", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2025, details.DateOfBirth.Year())

	// 90 would read as 2090, so it belongs to 1990.
	details, err = ParseSAID("9001010001088", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1990, details.DateOfBirth.Year())
}

func TestParseSAIDRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"too short", "900101000108"},
		{"too long", "90010100010888"},
		{"non-digit", "90010100A1088"},
		{"bad checksum", "9001010001080"},
		{"invalid month", "9013010001083"},
		{"invalid day", "9002300001085"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSAID(tc.id, testNow)
			assert.Error(t, err)
		})
	}
}

func TestMatchesDateOfBirth(t *testing.T) {
	details, err := ParseSAID("9001010001088", testNow)
	require.NoError(t, err)

	assert.True(t, details.MatchesDateOfBirth(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	// One day either side is tolerated for timezone skew.
	assert.True(t, details.MatchesDateOfBirth(time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, details.MatchesDateOfBirth(time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)))

	assert.False(t, details.MatchesDateOfBirth(time.Date(1990, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, details.MatchesDateOfBirth(time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC)))
}
