package db

import (
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
)

type SwipeType string

const (
	SwipeLike SwipeType = "like"
	SwipePass SwipeType = "pass"
)

func (t SwipeType) Valid() bool { return t == SwipeLike || t == SwipePass }

type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchInactive MatchStatus = "inactive"
	MatchBlocked  MatchStatus = "blocked"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestConfirmed RequestStatus = "confirmed"
	RequestRejected  RequestStatus = "rejected"
)

// Profile holds what matching needs to know about a user: age, location and
// the preferences they set. Active=false hides the profile from swiping.
type Profile struct {
	ID                string    `gorm:"primaryKey;size:36"`
	DisplayName       string    `gorm:"size:64;not null"`
	Gender            string    `gorm:"size:16;not null"`
	BirthDate         time.Time `gorm:"not null"`
	Latitude          *float64
	Longitude         *float64
	PrefMinAge        int     `gorm:"not null;default:18"`
	PrefMaxAge        int     `gorm:"not null;default:99"`
	PrefMaxDistanceKm float64 `gorm:"not null;default:0"`
	PrefGender        string  `gorm:"size:16"`
	Active            bool    `gorm:"not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// Swipe is a swiper's like/pass on another user. Written once, never updated.
//
// Composite PK: (SwiperID, SwipedID)
//   - A second swipe on the same target is rejected, not overwritten.
//
// Indexes:
//   - idx_swiped_type_created(swiped_id, type, created_at DESC, swiper_id)
//     Serves "who liked me" lists with cursor pagination.
//   - the PK itself serves the reverse-like lookup (swiped → swiper).
type Swipe struct {
	SwiperID  string    `gorm:"primaryKey;size:36"`
	SwipedID  string    `gorm:"primaryKey;size:36;index:idx_swiped_type_created,priority:1"`
	Type      SwipeType `gorm:"size:8;not null;index:idx_swiped_type_created,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_swiped_type_created,priority:3,sort:desc"`
}

// MatchRequest is a curated proposal that the matched user answers once.
type MatchRequest struct {
	ID                 string        `gorm:"primaryKey;size:36"`
	RequesterID        string        `gorm:"size:36;not null;index"`
	MatchedUserID      string        `gorm:"size:36;not null;index:idx_matched_status,priority:1"`
	Status             RequestStatus `gorm:"size:16;not null;index:idx_matched_status,priority:2"`
	CompatibilityScore *int
	ResponseMessage    *string `gorm:"size:500"`
	RespondedAt        *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// Match is the confirmed relationship between two users.
//
// User1ID < User2ID always (see matching.Canonical); the unique index on the
// ordered pair is what keeps concurrent formers from creating two rows.
type Match struct {
	ID                 string      `gorm:"primaryKey;size:36"`
	User1ID            string      `gorm:"size:36;not null;uniqueIndex:ux_match_pair,priority:1"`
	User2ID            string      `gorm:"size:36;not null;uniqueIndex:ux_match_pair,priority:2;index"`
	Status             MatchStatus `gorm:"size:16;not null"`
	CompatibilityScore *int
	SourceRequestID    *string   `gorm:"size:36"`
	ConversationID     *string   `gorm:"size:36"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// OtherUser returns the side of the match that is not userID.
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// Conversation is the message channel opened for a match; one per match.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MatchID   string    `gorm:"size:36;not null;uniqueIndex"`
	User1ID   string    `gorm:"size:36;not null"`
	User2ID   string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// NatalChart is the precomputed chart summary supplied by the chart service.
type NatalChart struct {
	UserID    string              `gorm:"primaryKey;size:36"`
	Chart     compatibility.Chart `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time           `gorm:"autoCreateTime"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime"`
}

// QuestionnaireResponse holds a user's latest answers.
type QuestionnaireResponse struct {
	UserID    string                `gorm:"primaryKey;size:36"`
	Answers   compatibility.Answers `gorm:"serializer:json;type:text;not null"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&Profile{},
		&Swipe{},
		&MatchRequest{},
		&Match{},
		&Conversation{},
		&NatalChart{},
		&QuestionnaireResponse{},
	}
}
