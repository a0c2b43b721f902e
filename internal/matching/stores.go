package matching

import (
	"context"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

// The interfaces below are what the matching services need from storage.
// The gorm repositories satisfy them; tests may swap in fakes.

type SwipeStore interface {
	InsertSwipe(ctx context.Context, s *db.Swipe) (repository.InsertOutcome, error)
	GetSwipe(ctx context.Context, swiperID, swipedID string) (*db.Swipe, error)
	HasLiked(ctx context.Context, swiperID, swipedID string) (bool, error)
	GetLikers(ctx context.Context, recipientID string, token *string, limit int) ([]db.Swipe, *string, error)
	GetNewLikers(ctx context.Context, recipientID string, token *string, limit int) ([]db.Swipe, *string, error)
	CountLikers(ctx context.Context, recipientID string) (int64, error)
}

type MatchStore interface {
	FindMatch(ctx context.Context, user1ID, user2ID string) (*db.Match, error)
	InsertMatchIfAbsent(ctx context.Context, m *db.Match) (repository.InsertOutcome, error)
	InsertConversation(ctx context.Context, c *db.Conversation) (repository.InsertOutcome, error)
	FindConversationByMatch(ctx context.Context, matchID string) (*db.Conversation, error)
	AttachConversation(ctx context.Context, matchID, conversationID string) error
	ListMatchesForUser(ctx context.Context, userID string, status db.MatchStatus, limit int) ([]db.Match, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *db.MatchRequest) error
	Get(ctx context.Context, id string) (*db.MatchRequest, error)
	UpdateStatus(ctx context.Context, id string, expected, next db.RequestStatus, message *string, at time.Time) (bool, error)
	ListPendingFor(ctx context.Context, userID string, limit int) ([]db.MatchRequest, error)
}

// ProfileStore reads user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*db.Profile, error)
}

// ChartProvider supplies the scoring inputs for a user. Either may be absent.
type ChartProvider interface {
	GetChart(ctx context.Context, userID string) (*compatibility.Chart, error)
	GetAnswers(ctx context.Context, userID string) (compatibility.Answers, error)
}

// ChartStore is a ChartProvider that also accepts updated inputs.
type ChartStore interface {
	ChartProvider
	SaveChart(ctx context.Context, userID string, chart compatibility.Chart) error
	SaveAnswers(ctx context.Context, userID string, answers compatibility.Answers) error
}

// LikeCountCache caches per-user liker counts.
type LikeCountCache interface {
	GetLikeCount(ctx context.Context, userID string) (int64, bool, error)
	UpdateLikeCount(ctx context.Context, userID string, count int64) error
	InvalidateLikeCount(ctx context.Context, userID string) error
}

// CompatibilityCache caches results by canonical pair.
type CompatibilityCache interface {
	GetCompatibility(ctx context.Context, user1ID, user2ID string) (*compatibility.Result, error)
	SetCompatibility(ctx context.Context, user1ID, user2ID string, res compatibility.Result) error
	InvalidateCompatibility(ctx context.Context, userID string) error
}
