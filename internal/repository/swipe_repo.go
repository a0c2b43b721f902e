package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/utils/pagination"
)

// InsertOutcome tells a conditional insert's caller what happened without
// turning a lost race into an error.
type InsertOutcome int

const (
	// Inserted means this call wrote the row.
	Inserted InsertOutcome = iota + 1
	// AlreadyExisted means a row with the same unique key was already there;
	// nothing was written.
	AlreadyExisted
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyExisted:
		return "already_existed"
	default:
		return "unknown"
	}
}

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates all queries related to likes/passes between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// InsertSwipe writes a swipe made by swiper -> swiped.
//
// Behavior:
//   - If the (swiper_id, swiped_id) pair does not exist → the row is inserted.
//   - If it exists → nothing changes and AlreadyExisted is returned.
//     Swipes are immutable, so the first decision always stands.
//
// Example:
//
//	repo.InsertSwipe(ctx, &db.Swipe{SwiperID: a, SwipedID: b, Type: db.SwipeLike})
func (r *SwipeRepository) InsertSwipe(ctx context.Context, s *db.Swipe) (InsertOutcome, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swiped_id"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return AlreadyExisted, nil
	}
	return Inserted, nil
}

// GetSwipe returns the swipe swiper made on swiped, or nil if there is none.
func (r *SwipeRepository) GetSwipe(ctx context.Context, swiperID, swipedID string) (*db.Swipe, error) {
	var s db.Swipe
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND swiped_id = ?", swiperID, swipedID).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HasLiked checks whether swiper has liked swiped.
//
// Behavior:
//   - Returns true if there exists a swipe row where swiper_id = X,
//     swiped_id = Y, and type = like.
//   - Used as the reverse-like lookup for mutual match detection.
//
// Example:
//
//	repo.HasLiked(ctx, b, a) // -> true if user b liked user a
func (r *SwipeRepository) HasLiked(ctx context.Context, swiperID, swipedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("swiper_id = ? AND swiped_id = ? AND type = ?", swiperID, swipedID, db.SwipeLike).
		Count(&count).Error
	return count > 0, err
}

// notPassedByRecipient filters out likers the recipient explicitly passed.
const notPassedByRecipient = `
	NOT EXISTS (
		SELECT 1 FROM swipes s2
		WHERE s2.swiper_id = ?
		  AND s2.swiped_id = s.swiper_id
		  AND s2.type = 'pass'
	)`

// notLikedBackByRecipient filters out likers the recipient already liked back.
const notLikedBackByRecipient = `
	NOT EXISTS (
		SELECT 1 FROM swipes s3
		WHERE s3.swiper_id = s.swiped_id
		  AND s3.swiped_id = s.swiper_id
		  AND s3.type = 'like'
	)`

// GetLikers returns all users who liked the given recipient.
//
// Behavior:
//   - Only swipes where swiped_id = X and type = like are returned.
//   - Excludes users that the recipient explicitly passed.
//   - Ordered by created_at DESC, swiper_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, id, nil, 20) // list first 20 people who liked id
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	return r.listLikers(ctx, recipientID, paginationToken, limit, false)
}

// GetNewLikers returns users who liked the recipient but have not been liked back.
//
// Behavior:
//   - Same as GetLikers, minus mutual likes.
//
// Example:
//
//	repo.GetNewLikers(ctx, id, nil, 20) // list first 20 one-way likes for id
func (r *SwipeRepository) GetNewLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	return r.listLikers(ctx, recipientID, paginationToken, limit, true)
}

func (r *SwipeRepository) listLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
	onlyOneWay bool,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Select("s.*").
		Where("s.swiped_id = ? AND s.type = ?", recipientID, db.SwipeLike).
		Where(notPassedByRecipient, recipientID)
	if onlyOneWay {
		query = query.Where(notLikedBackByRecipient)
	}

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.swiper_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.
		Order("s.created_at DESC, s.swiper_id DESC").
		Limit(limit + 1).
		Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.SwiperID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountLikers returns how many users liked the given recipient.
//
// Behavior:
//   - Counts only swipes where swiped_id = X and type = like.
//   - Excludes users that recipient explicitly passed.
//   - Used in conjunction with Redis cache (DB is fallback).
func (r *SwipeRepository) CountLikers(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.swiped_id = ? AND s.type = ?", recipientID, db.SwipeLike).
		Where(notPassedByRecipient, recipientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
