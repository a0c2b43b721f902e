package matchmaking

import (
	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// Request and response messages of matchmaking.v1.MatchmakingService.
// They travel as JSON; validate tags are checked before any domain call.

type RecordSwipeRequest struct {
	SwiperUserID string `json:"swiper_user_id" validate:"required,uuid"`
	SwipedUserID string `json:"swiped_user_id" validate:"required,uuid"`
	Type         string `json:"type" validate:"required,oneof=like pass"`
}

type RecordSwipeResponse struct {
	SwipedUnixTimestamp uint64     `json:"swiped_unix_timestamp"`
	MutualLike          bool       `json:"mutual_like"`
	MatchCreated        bool       `json:"match_created"`
	Match               *MatchView `json:"match,omitempty"`
}

type RespondToMatchRequestRequest struct {
	RequestID   string  `json:"request_id" validate:"required,uuid"`
	ResponderID string  `json:"responder_id" validate:"required,uuid"`
	Decision    string  `json:"decision" validate:"required,oneof=accept reject"`
	Message     *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type RespondToMatchRequestResponse struct {
	Updated bool             `json:"updated"`
	Request MatchRequestView `json:"request"`
	Match   *MatchView       `json:"match,omitempty"`
}

type CreateMatchRequestRequest struct {
	RequesterID   string `json:"requester_id" validate:"required,uuid"`
	MatchedUserID string `json:"matched_user_id" validate:"required,uuid"`
}

type CreateMatchRequestResponse struct {
	Request MatchRequestView `json:"request"`
}

type ListPendingMatchRequestsRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
}

type ListPendingMatchRequestsResponse struct {
	Requests []MatchRequestView `json:"requests"`
}

type GetMatchRequest struct {
	UserAID string `json:"user_a_id" validate:"required,uuid"`
	UserBID string `json:"user_b_id" validate:"required,uuid"`
}

type GetMatchResponse struct {
	Match MatchView `json:"match"`
}

type ListMatchesRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Limit  int    `json:"limit" validate:"gte=0,lte=50"`
}

type ListMatchesResponse struct {
	Matches []MatchView `json:"matches"`
}

type ListLikedYouRequest struct {
	RecipientUserID string  `json:"recipient_user_id" validate:"required,uuid"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit" validate:"gte=0,lte=100"`
}

type Liker struct {
	ActorID       string `json:"actor_id"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

type ListLikedYouResponse struct {
	Likers              []Liker `json:"likers"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type CountLikedYouRequest struct {
	RecipientUserID string `json:"recipient_user_id" validate:"required,uuid"`
}

type CountLikedYouResponse struct {
	Count uint64 `json:"count"`
}

type ScoreCompatibilityRequest struct {
	UserAID string `json:"user_a_id" validate:"required,uuid"`
	UserBID string `json:"user_b_id" validate:"required,uuid"`
}

type ScoreCompatibilityResponse struct {
	Result compatibility.Result `json:"result"`
}

type PutNatalChartRequest struct {
	UserID string              `json:"user_id" validate:"required,uuid"`
	Chart  compatibility.Chart `json:"chart"`
}

type PutNatalChartResponse struct{}

type PutQuestionnaireRequest struct {
	UserID  string                `json:"user_id" validate:"required,uuid"`
	Answers compatibility.Answers `json:"answers" validate:"required,min=1"`
}

type PutQuestionnaireResponse struct{}

type CheckEligibilityRequest struct {
	UserAID string `json:"user_a_id" validate:"required,uuid"`
	UserBID string `json:"user_b_id" validate:"required,uuid"`
}

type CheckEligibilityResponse struct {
	Eligible   bool     `json:"eligible"`
	Reasons    []string `json:"reasons,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// MatchView is a match as returned to clients.
type MatchView struct {
	ID                 string  `json:"id"`
	User1ID            string  `json:"user1_id"`
	User2ID            string  `json:"user2_id"`
	Status             string  `json:"status"`
	CompatibilityScore *int    `json:"compatibility_score,omitempty"`
	SourceRequestID    *string `json:"source_request_id,omitempty"`
	ConversationID     *string `json:"conversation_id,omitempty"`
	CreatedUnix        int64   `json:"created_unix"`
}

// MatchRequestView is a match request as returned to clients.
type MatchRequestView struct {
	ID                 string  `json:"id"`
	RequesterID        string  `json:"requester_id"`
	MatchedUserID      string  `json:"matched_user_id"`
	Status             string  `json:"status"`
	CompatibilityScore *int    `json:"compatibility_score,omitempty"`
	ResponseMessage    *string `json:"response_message,omitempty"`
	RespondedUnix      *int64  `json:"responded_unix,omitempty"`
	CreatedUnix        int64   `json:"created_unix"`
}

func toMatchView(m *db.Match, conv *db.Conversation) *MatchView {
	if m == nil {
		return nil
	}
	v := &MatchView{
		ID:                 m.ID,
		User1ID:            m.User1ID,
		User2ID:            m.User2ID,
		Status:             string(m.Status),
		CompatibilityScore: m.CompatibilityScore,
		SourceRequestID:    m.SourceRequestID,
		ConversationID:     m.ConversationID,
		CreatedUnix:        m.CreatedAt.UnixMilli(),
	}
	if v.ConversationID == nil && conv != nil {
		id := conv.ID
		v.ConversationID = &id
	}
	return v
}

func toRequestView(r *db.MatchRequest) MatchRequestView {
	v := MatchRequestView{
		ID:                 r.ID,
		RequesterID:        r.RequesterID,
		MatchedUserID:      r.MatchedUserID,
		Status:             string(r.Status),
		CompatibilityScore: r.CompatibilityScore,
		ResponseMessage:    r.ResponseMessage,
		CreatedUnix:        r.CreatedAt.UnixMilli(),
	}
	if r.RespondedAt != nil {
		ms := r.RespondedAt.UnixMilli()
		v.RespondedUnix = &ms
	}
	return v
}

func toLikers(in []matching.Liker) []Liker {
	out := make([]Liker, 0, len(in))
	for _, l := range in {
		out = append(out, Liker{ActorID: l.UserID, UnixTimestamp: uint64(l.LikedAt.UnixMilli())})
	}
	return out
}
