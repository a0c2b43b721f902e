package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/db"
)

// MatchRequestRepository stores curated match requests.
type MatchRequestRepository struct {
	db *gorm.DB
}

// NewMatchRequestRepository creates a new repository bound to the given DB connection.
func NewMatchRequestRepository(database *gorm.DB) *MatchRequestRepository {
	return &MatchRequestRepository{db: database}
}

func (r *MatchRequestRepository) Create(ctx context.Context, req *db.MatchRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Get returns a request by id, or nil if there is none.
func (r *MatchRequestRepository) Get(ctx context.Context, id string) (*db.MatchRequest, error) {
	var req db.MatchRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus moves a request from expected to next, storing the response
// message and time.
//
// Behavior:
//   - The WHERE clause includes the expected status, so of two concurrent
//     responders exactly one sees updated=true.
//   - updated=false means the request was not in the expected status (or does
//     not exist); the caller decides which.
func (r *MatchRequestRepository) UpdateStatus(
	ctx context.Context,
	id string,
	expected, next db.RequestStatus,
	message *string,
	at time.Time,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.MatchRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":           next,
			"response_message": message,
			"responded_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListPendingFor returns requests waiting for userID's answer, oldest first.
func (r *MatchRequestRepository) ListPendingFor(ctx context.Context, userID string, limit int) ([]db.MatchRequest, error) {
	var reqs []db.MatchRequest
	err := r.db.WithContext(ctx).
		Where("matched_user_id = ? AND status = ?", userID, db.RequestPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&reqs).Error
	return reqs, err
}
