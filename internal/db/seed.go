package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
)

// SeedUsers is the number of demo profiles SeedTestData creates.
const SeedUsers = 20

// seedNamespace keeps demo ids stable across runs.
var seedNamespace = uuid.MustParse("6f1c2f0e-4b8a-4c59-9a3e-2d7f5b1e8c40")

var seedCities = []struct {
	name     string
	lat, lng float64
}{
	{"london", 51.5074, -0.1278},
	{"brighton", 50.8225, -0.1372},
	{"oxford", 51.7520, -1.2577},
	{"manchester", 53.4808, -2.2426},
	{"edinburgh", 55.9533, -3.1883},
}

var seedQuestions = map[string][]string{
	"kids":     {"yes", "no", "maybe"},
	"pets":     {"dog", "cat", "none"},
	"smoking":  {"never", "socially", "yes"},
	"religion": {"none", "spiritual", "practising"},
	"weekend":  {"outdoors", "city", "home"},
	"diet":     {"anything", "vegetarian", "vegan"},
}

// SeedUserID returns the stable id of the i-th demo profile (1-based).
func SeedUserID(i int) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("user%d", i))).String()
}

// SeedTestData resets the database and populates it with demo profiles,
// natal charts and questionnaire answers.
//
// Behavior:
//  1. Clears every matching table, children first.
//  2. Creates SeedUsers profiles (half male, half female) spread over a few
//     UK cities, each with a 300 km radius.
//  3. Gives every profile a full chart; every 4th one only knows its Sun sign.
//  4. Answers the questionnaire for all but the last two profiles.
//
// Swipes are not seeded here: they go through the matching services so that
// mutual likes form matches the same way they do in production.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) ([]Profile, error) {
	r := rand.New(rand.NewSource(42))

	// --- Fresh start ---
	for _, m := range []any{&Conversation{}, &Match{}, &MatchRequest{}, &Swipe{}, &NatalChart{}, &QuestionnaireResponse{}, &Profile{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return nil, fmt.Errorf("failed to clear %T: %w", m, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Seed Profiles ---
	profiles := make([]Profile, 0, SeedUsers)
	now := time.Now().UTC()
	for i := 1; i <= SeedUsers; i++ {
		gender, want := "male", "female"
		if i > SeedUsers/2 {
			gender, want = "female", "male"
		}
		city := seedCities[r.Intn(len(seedCities))]
		lat := city.lat + (r.Float64()-0.5)*0.1
		lng := city.lng + (r.Float64()-0.5)*0.1

		profiles = append(profiles, Profile{
			ID:                SeedUserID(i),
			DisplayName:       fmt.Sprintf("user%d", i),
			Gender:            gender,
			BirthDate:         now.AddDate(-(21 + r.Intn(20)), -r.Intn(12), -r.Intn(28)),
			Latitude:          &lat,
			Longitude:         &lng,
			PrefMinAge:        18,
			PrefMaxAge:        50,
			PrefMaxDistanceKm: 300,
			PrefGender:        want,
			Active:            true,
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to seed profiles: %w", err)
	}
	log.Printf("Seeded %d profiles.", len(profiles))

	// --- Seed Charts ---
	charts := make([]NatalChart, 0, len(profiles))
	for i, p := range profiles {
		charts = append(charts, NatalChart{UserID: p.ID, Chart: randomChart(r, i%4 == 3)})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&charts).Error; err != nil {
		return nil, fmt.Errorf("failed to seed charts: %w", err)
	}

	// --- Seed Questionnaires ---
	answers := make([]QuestionnaireResponse, 0, len(profiles))
	for _, p := range profiles[:len(profiles)-2] {
		a := compatibility.Answers{}
		for q, opts := range seedQuestions {
			a[q] = opts[r.Intn(len(opts))]
		}
		answers = append(answers, QuestionnaireResponse{UserID: p.ID, Answers: a})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to seed answers: %w", err)
	}
	log.Printf("Seeded %d charts and %d questionnaires.", len(charts), len(answers))

	return profiles, nil
}

func randomChart(r *rand.Rand, sunOnly bool) compatibility.Chart {
	c := compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{}}
	for _, b := range compatibility.Bodies {
		d := r.Float64() * 360
		if sunOnly {
			if b == compatibility.Sun {
				c.Positions[b] = compatibility.Position{Sign: compatibility.SignOf(d)}
			}
			continue
		}
		c.Positions[b] = compatibility.Position{Sign: compatibility.SignOf(d), Degree: &d}
	}
	return c
}
