package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
)

// ToEligibility converts a stored profile to the filter's view of it,
// computing the age at now.
func ToEligibility(p *db.Profile, now time.Time) eligibility.Profile {
	out := eligibility.Profile{
		ID:     p.ID,
		Age:    eligibility.Age(p.BirthDate, now),
		Gender: p.Gender,
		Preferences: eligibility.Preferences{
			MinAge:        p.PrefMinAge,
			MaxAge:        p.PrefMaxAge,
			MaxDistanceKm: p.PrefMaxDistanceKm,
			Gender:        p.PrefGender,
		},
	}
	if p.Latitude != nil && p.Longitude != nil {
		out.Location = &eligibility.Location{Lat: *p.Latitude, Lng: *p.Longitude}
	}
	return out
}

// Eligibility loads two profiles and runs the mutual preference checks.
type Eligibility struct {
	profiles ProfileStore
	now      func() time.Time
}

func NewEligibility(profiles ProfileStore) *Eligibility {
	return &Eligibility{profiles: profiles, now: time.Now}
}

func (e *Eligibility) Check(ctx context.Context, userA, userB string) (eligibility.Result, error) {
	if err := validatePair(userA, userB); err != nil {
		return eligibility.Result{}, err
	}
	a, err := e.load(ctx, userA)
	if err != nil {
		return eligibility.Result{}, err
	}
	b, err := e.load(ctx, userB)
	if err != nil {
		return eligibility.Result{}, err
	}
	now := e.now()
	return eligibility.Check(ToEligibility(a, now), ToEligibility(b, now)), nil
}

func (e *Eligibility) load(ctx context.Context, id string) (*db.Profile, error) {
	p, err := e.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, svcErr.NotFound("profile %s not found", id)
	}
	return p, nil
}
