package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/db"
)

// MatchRepository stores matches and their conversations.
//
// All pair lookups take the canonical (user1, user2) order; callers are
// responsible for ordering the ids before calling in.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// FindMatch returns the match for a canonical pair, or nil if there is none.
func (r *MatchRepository) FindMatch(ctx context.Context, user1ID, user2ID string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMatchByID returns a match by id, or nil if there is none.
func (r *MatchRepository) FindMatchByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertMatchIfAbsent inserts m unless a match for the same pair exists.
//
// Behavior:
//   - Relies on the ux_match_pair unique index, so two concurrent callers can
//     both get past a "not found" read and still only one row is written.
//   - The loser gets AlreadyExisted and no error; it should re-read the pair.
func (r *MatchRepository) InsertMatchIfAbsent(ctx context.Context, m *db.Match) (InsertOutcome, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return AlreadyExisted, nil
	}
	return Inserted, nil
}

// InsertConversation writes the conversation for a match. A match has at most
// one conversation; a second insert for the same match reports AlreadyExisted.
func (r *MatchRepository) InsertConversation(ctx context.Context, c *db.Conversation) (InsertOutcome, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoNothing: true,
		}).
		Create(c)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return AlreadyExisted, nil
	}
	return Inserted, nil
}

// FindConversationByMatch returns the conversation bound to matchID, or nil.
func (r *MatchRepository) FindConversationByMatch(ctx context.Context, matchID string) (*db.Conversation, error) {
	var c db.Conversation
	err := r.db.WithContext(ctx).Where("match_id = ?", matchID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AttachConversation records the conversation id on the match if none is set
// yet. It is a no-op when another caller got there first.
func (r *MatchRepository) AttachConversation(ctx context.Context, matchID, conversationID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND conversation_id IS NULL", matchID).
		Update("conversation_id", conversationID).Error
}

// ListMatchesForUser returns the user's matches with the given status,
// newest first.
func (r *MatchRepository) ListMatchesForUser(ctx context.Context, userID string, status db.MatchStatus, limit int) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, status).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

// CountMatches counts match rows for a canonical pair regardless of status.
// Mostly useful to assert uniqueness.
func (r *MatchRepository) CountMatches(ctx context.Context, user1ID, user2ID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		Count(&n).Error
	return n, err
}
