package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
)

// ProfileRepository reads profiles and the scoring inputs attached to them:
// natal charts and questionnaire answers.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetProfile returns a profile by id, or nil if there is none.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetChart returns the user's chart summary, or nil if the chart service has
// not produced one.
func (r *ProfileRepository) GetChart(ctx context.Context, userID string) (*compatibility.Chart, error) {
	var nc db.NatalChart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&nc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &nc.Chart, nil
}

// GetAnswers returns the user's questionnaire answers, or nil.
func (r *ProfileRepository) GetAnswers(ctx context.Context, userID string) (compatibility.Answers, error) {
	var qr db.QuestionnaireResponse
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&qr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return qr.Answers, nil
}

// SaveChart inserts or replaces the user's chart.
func (r *ProfileRepository) SaveChart(ctx context.Context, userID string, chart compatibility.Chart) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chart", "updated_at"}),
		}).
		Create(&db.NatalChart{UserID: userID, Chart: chart}).Error
}

// SaveAnswers inserts or replaces the user's questionnaire answers.
func (r *ProfileRepository) SaveAnswers(ctx context.Context, userID string, answers compatibility.Answers) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answers", "updated_at"}),
		}).
		Create(&db.QuestionnaireResponse{UserID: userID, Answers: answers}).Error
}
