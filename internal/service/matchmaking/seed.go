package matchmaking

import (
	"context"
	"fmt"
	"math/rand"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/db"
)

// SeedSummary counts what Seed produced.
type SeedSummary struct {
	Profiles int
	Swipes   int
	Matches  int
	Requests int
}

// Seed fills a development database with demo profiles and drives swipes and
// match requests through the service, so every mutual like ends up as a match
// with a conversation.
//
// Behavior:
//   - each profile swipes on ~8 profiles of the other gender, ~70% likes
//   - every 3rd like is answered with a like back
//   - every male profile sends one curated request that stays pending
func Seed(ctx context.Context, appCtx *app.AppContext) (SeedSummary, error) {
	profiles, err := db.SeedTestData(appCtx.DB)
	if err != nil {
		return SeedSummary{}, err
	}
	svc := NewMatchmakingService(appCtx)
	r := rand.New(rand.NewSource(7))
	sum := SeedSummary{Profiles: len(profiles)}

	// swipe reports whether a new swipe was stored. A pair that was already
	// swiped is skipped; any other failure aborts seeding.
	swipe := func(from, to, kind string) (bool, error) {
		resp, err := svc.RecordSwipe(ctx, &RecordSwipeRequest{SwiperUserID: from, SwipedUserID: to, Type: kind})
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("seed swipe %s -> %s: %w", from, to, err)
		}
		sum.Swipes++
		if resp.MatchCreated {
			sum.Matches++
		}
		return true, nil
	}

	counter := 0
	for _, actor := range profiles {
		for j := 0; j < 8; j++ {
			target := profiles[r.Intn(len(profiles))]
			if target.Gender == actor.Gender {
				continue
			}
			kind := "pass"
			if r.Intn(100) < 70 {
				kind = "like"
			}
			stored, err := swipe(actor.ID, target.ID, kind)
			if err != nil {
				return sum, err
			}
			if !stored || kind != "like" {
				continue
			}
			counter++
			if counter%3 == 0 {
				if _, err := swipe(target.ID, actor.ID, "like"); err != nil {
					return sum, err
				}
			}
		}
	}

	half := len(profiles) / 2
	for i := 0; i < half; i++ {
		to := profiles[half+r.Intn(len(profiles)-half)]
		if _, err := svc.CreateMatchRequest(ctx, &CreateMatchRequestRequest{RequesterID: profiles[i].ID, MatchedUserID: to.ID}); err != nil {
			return sum, fmt.Errorf("seed match request: %w", err)
		}
		sum.Requests++
	}

	appCtx.Logger.Info("seeded demo data",
		"profiles", sum.Profiles, "swipes", sum.Swipes, "matches", sum.Matches, "requests", sum.Requests)
	return sum, nil
}
