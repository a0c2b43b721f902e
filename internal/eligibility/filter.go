// Package eligibility decides whether two profiles fall inside each other's
// stated preferences. Pure functions only.
package eligibility

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64
	Lng float64
}

// Preferences are the bounds a user sets on who they want to see.
// Zero values mean "no preference".
type Preferences struct {
	MinAge        int
	MaxAge        int
	MaxDistanceKm float64
	Gender        string
}

// Profile is the slice of a user profile the filter needs.
type Profile struct {
	ID          string
	Age         int
	Gender      string
	Location    *Location
	Preferences Preferences
}

// Result carries the decision and a human-readable reason per failed check.
type Result struct {
	Eligible   bool     `json:"eligible"`
	Reasons    []string `json:"reasons,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// Check runs every mutual check; a failure in either direction makes the pair
// ineligible. All failing checks are reported, not just the first.
func Check(a, b Profile) Result {
	var reasons []string

	reasons = appendAge(reasons, a, b)
	reasons = appendAge(reasons, b, a)
	reasons = appendGender(reasons, a, b)
	reasons = appendGender(reasons, b, a)

	var dist *float64
	if a.Location != nil && b.Location != nil {
		d := Haversine(*a.Location, *b.Location)
		dist = &d
		reasons = appendDistance(reasons, a, b, d)
		reasons = appendDistance(reasons, b, a, d)
	}

	return Result{Eligible: len(reasons) == 0, Reasons: reasons, DistanceKm: dist}
}

// appendAge checks subject's age against viewer's age window.
func appendAge(reasons []string, subject, viewer Profile) []string {
	p := viewer.Preferences
	if p.MinAge > 0 && subject.Age < p.MinAge {
		reasons = append(reasons, fmt.Sprintf(
			"user %s age %d is below user %s min age preference %d",
			subject.ID, subject.Age, viewer.ID, p.MinAge))
	}
	if p.MaxAge > 0 && subject.Age > p.MaxAge {
		reasons = append(reasons, fmt.Sprintf(
			"user %s age %d is above user %s max age preference %d",
			subject.ID, subject.Age, viewer.ID, p.MaxAge))
	}
	return reasons
}

func appendGender(reasons []string, subject, viewer Profile) []string {
	want := strings.ToLower(strings.TrimSpace(viewer.Preferences.Gender))
	if want == "" || want == "any" || want == "all" {
		return reasons
	}
	if strings.EqualFold(strings.TrimSpace(subject.Gender), want) {
		return reasons
	}
	return append(reasons, fmt.Sprintf(
		"user %s gender %q does not match user %s gender preference %q",
		subject.ID, subject.Gender, viewer.ID, viewer.Preferences.Gender))
}

// appendDistance checks the pair distance against viewer's own radius.
func appendDistance(reasons []string, subject, viewer Profile, km float64) []string {
	max := viewer.Preferences.MaxDistanceKm
	if max <= 0 || km <= max {
		return reasons
	}
	return append(reasons, fmt.Sprintf(
		"user %s is %.1f km away, beyond user %s max distance preference %.0f km",
		subject.ID, km, viewer.ID, max))
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Location) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLng := rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Age returns completed years between birth and now.
func Age(birth, now time.Time) int {
	if birth.IsZero() || now.Before(birth) {
		return 0
	}
	years := now.Year() - birth.Year()
	if !sameOrAfterBirthday(birth, now) {
		years--
	}
	return years
}

func sameOrAfterBirthday(birth, now time.Time) bool {
	if now.Month() != birth.Month() {
		return now.Month() > birth.Month()
	}
	return now.Day() >= birth.Day()
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
