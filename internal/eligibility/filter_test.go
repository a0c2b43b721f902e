package eligibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/eligibility"
)

var (
	london     = &eligibility.Location{Lat: 51.5074, Lng: -0.1278}
	manchester = &eligibility.Location{Lat: 53.4808, Lng: -2.2426}
)

func profile(id string, age int, loc *eligibility.Location, min, max int, km float64) eligibility.Profile {
	return eligibility.Profile{
		ID:       id,
		Age:      age,
		Location: loc,
		Preferences: eligibility.Preferences{
			MinAge: min, MaxAge: max, MaxDistanceKm: km,
		},
	}
}

func TestCheck_Eligible(t *testing.T) {
	a := profile("A", 30, london, 25, 40, 300)
	b := profile("B", 32, manchester, 28, 35, 300)

	res := eligibility.Check(a, b)
	assert.True(t, res.Eligible)
	assert.Empty(t, res.Reasons)
	require.NotNil(t, res.DistanceKm)
	assert.InDelta(t, 262, *res.DistanceKm, 5)
}

// TestCheck_AgeAboveMax: A is 40, B only wants up to 35.
func TestCheck_AgeAboveMax(t *testing.T) {
	a := profile("A", 40, nil, 18, 60, 0)
	b := profile("B", 33, nil, 25, 35, 0)

	res := eligibility.Check(a, b)
	assert.False(t, res.Eligible)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "user A age 40")
	assert.Contains(t, res.Reasons[0], "user B max age preference 35")
}

func TestCheck_AgeBelowMinIsDirectional(t *testing.T) {
	a := profile("A", 22, nil, 18, 60, 0)
	b := profile("B", 30, nil, 25, 40, 0)

	res := eligibility.Check(a, b)
	assert.False(t, res.Eligible)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "below user B min age preference 25")
}

func TestCheck_DistanceUsesEachUsersOwnRadius(t *testing.T) {
	a := profile("A", 30, london, 18, 99, 500) // fine for A
	b := profile("B", 30, manchester, 18, 99, 50)

	res := eligibility.Check(a, b)
	assert.False(t, res.Eligible)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "beyond user B max distance preference 50 km")
}

func TestCheck_MissingLocationSkipsDistance(t *testing.T) {
	a := profile("A", 30, nil, 18, 99, 1)
	b := profile("B", 30, manchester, 18, 99, 1)

	res := eligibility.Check(a, b)
	assert.True(t, res.Eligible)
	assert.Nil(t, res.DistanceKm)
}

func TestCheck_ReportsEveryFailure(t *testing.T) {
	a := profile("A", 50, london, 45, 60, 10)
	b := profile("B", 20, manchester, 18, 30, 10)
	a.Gender, b.Gender = "male", "female"
	a.Preferences.Gender = "male"

	res := eligibility.Check(a, b)
	assert.False(t, res.Eligible)
	// A too old for B, B too young for A, gender, distance both ways
	assert.Len(t, res.Reasons, 5)
}

func TestCheck_GenderAny(t *testing.T) {
	a := profile("A", 30, nil, 0, 0, 0)
	b := profile("B", 30, nil, 0, 0, 0)
	a.Gender, b.Gender = "female", "male"
	a.Preferences.Gender, b.Preferences.Gender = "any", "FEMALE"

	assert.True(t, eligibility.Check(a, b).Eligible)
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, eligibility.Haversine(*london, *london), 1e-9)
	// antipodal points: half the circumference
	d := eligibility.Haversine(eligibility.Location{Lat: 0, Lng: 0}, eligibility.Location{Lat: 0, Lng: 180})
	assert.InDelta(t, 20015, d, 5)
}

func TestAge(t *testing.T) {
	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 34, eligibility.Age(birth, time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, eligibility.Age(birth, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, eligibility.Age(birth, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, eligibility.Age(time.Time{}, time.Now()))
}
