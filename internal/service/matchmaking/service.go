package matchmaking

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/matching"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

// Service implements the Matchmaking gRPC API.
// It validates requests, calls the matching services and maps their errors
// to gRPC status codes. It holds no match state of its own.
type Service struct {
	appCtx   *app.AppContext
	validate *validator.Validate

	ledger      *matching.Ledger
	former      *matching.Former
	requests    *matching.Requests
	compat      *matching.Compatibility
	eligibility *matching.Eligibility
}

// NewMatchmakingService creates the service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the swipe, match, request and profile repositories)
//   - RedisCache for like counts and cached compatibility results
//   - Notifier for like, match and request events
func NewMatchmakingService(appCtx *app.AppContext) *Service {
	log := appCtx.Logger

	swipes := repository.NewSwipeRepository(appCtx.DB)
	matches := repository.NewMatchRepository(appCtx.DB)
	requests := repository.NewMatchRequestRepository(appCtx.DB)
	profiles := repository.NewProfileRepository(appCtx.DB)

	compat := matching.NewCompatibility(compatibility.NewScorer(compatibility.AnswerOverlap{}), profiles, appCtx.RedisCache, log)
	former := matching.NewFormer(matches, compat, appCtx.Notifier, log)

	return &Service{
		appCtx:      appCtx,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		ledger:      matching.NewLedger(swipes, profiles, matches, former, appCtx.RedisCache, appCtx.Notifier, log),
		former:      former,
		requests:    matching.NewRequests(requests, profiles, former, compat, appCtx.Notifier, log),
		compat:      compat,
		eligibility: matching.NewEligibility(profiles),
	}
}

// check runs the struct's validate tags and returns an InvalidArgument
// status naming every bad field.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return svcErr.InvalidArgument(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}
	return svcErr.InvalidArgument(strings.Join(fields, "; "))
}

// RecordSwipe stores a like or pass and reports whether it formed a match.
//
// Example:
//
//	svc.RecordSwipe(ctx, &RecordSwipeRequest{SwiperUserID: a, SwipedUserID: b, Type: "like"})
func (s *Service) RecordSwipe(ctx context.Context, req *RecordSwipeRequest) (*RecordSwipeResponse, error) {
	s.appCtx.Logger.Debug("RecordSwipe called", "swiper", req.SwiperUserID, "swiped", req.SwipedUserID, "type", req.Type)
	if err := s.check(req); err != nil {
		return nil, err
	}

	out, err := s.ledger.RecordSwipe(ctx, req.SwiperUserID, req.SwipedUserID, db.SwipeType(req.Type))
	if err != nil {
		return nil, s.fail("RecordSwipe", err)
	}

	resp := &RecordSwipeResponse{
		MutualLike:   out.Match != nil,
		MatchCreated: out.MatchCreated,
		Match:        toMatchView(out.Match, out.Conversation),
	}
	if out.Swipe != nil {
		resp.SwipedUnixTimestamp = uint64(out.Swipe.CreatedAt.UnixMilli())
	}
	return resp, nil
}

// RespondToMatchRequest accepts or rejects a pending match request.
func (s *Service) RespondToMatchRequest(ctx context.Context, req *RespondToMatchRequestRequest) (*RespondToMatchRequestResponse, error) {
	s.appCtx.Logger.Debug("RespondToMatchRequest called", "request", req.RequestID, "responder", req.ResponderID, "decision", req.Decision)
	if err := s.check(req); err != nil {
		return nil, err
	}

	res, err := s.requests.Respond(ctx, req.RequestID, req.ResponderID, matching.Decision(req.Decision), req.Message)
	if err != nil {
		return nil, s.fail("RespondToMatchRequest", err)
	}
	return &RespondToMatchRequestResponse{
		Updated: res.Updated,
		Request: toRequestView(res.Request),
		Match:   toMatchView(res.Match, res.Conversation),
	}, nil
}

// CreateMatchRequest opens a pending request between two users.
func (s *Service) CreateMatchRequest(ctx context.Context, req *CreateMatchRequestRequest) (*CreateMatchRequestResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	created, err := s.requests.Create(ctx, req.RequesterID, req.MatchedUserID)
	if err != nil {
		return nil, s.fail("CreateMatchRequest", err)
	}
	return &CreateMatchRequestResponse{Request: toRequestView(created)}, nil
}

// ListPendingMatchRequests lists requests waiting for the user's answer.
func (s *Service) ListPendingMatchRequests(ctx context.Context, req *ListPendingMatchRequestsRequest) (*ListPendingMatchRequestsResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListPending(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, s.fail("ListPendingMatchRequests", err)
	}
	resp := &ListPendingMatchRequestsResponse{Requests: make([]MatchRequestView, 0, len(reqs))}
	for i := range reqs {
		resp.Requests = append(resp.Requests, toRequestView(&reqs[i]))
	}
	return resp, nil
}

// GetMatch returns the match between two users in either order.
func (s *Service) GetMatch(ctx context.Context, req *GetMatchRequest) (*GetMatchResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.former.GetMatch(ctx, req.UserAID, req.UserBID)
	if err != nil {
		return nil, s.fail("GetMatch", err)
	}
	return &GetMatchResponse{Match: *toMatchView(res.Match, res.Conversation)}, nil
}

// ListMatches returns the user's active matches, newest first.
func (s *Service) ListMatches(ctx context.Context, req *ListMatchesRequest) (*ListMatchesResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	matches, err := s.former.ListMatches(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, s.fail("ListMatches", err)
	}
	resp := &ListMatchesResponse{Matches: make([]MatchView, 0, len(matches))}
	for i := range matches {
		resp.Matches = append(resp.Matches, *toMatchView(&matches[i], nil))
	}
	return resp, nil
}

// ListLikedYou returns all users who liked the given recipient.
//
// Behavior:
//   - Excludes users that the recipient explicitly passed.
//   - Supports cursor-based pagination with PaginationToken.
//   - Returns actor_id + timestamp pairs.
func (s *Service) ListLikedYou(ctx context.Context, req *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", req.RecipientUserID)
	if err := s.check(req); err != nil {
		return nil, err
	}
	likers, next, err := s.ledger.ListLikers(ctx, req.RecipientUserID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, s.fail("ListLikedYou", err)
	}
	return &ListLikedYouResponse{Likers: toLikers(likers), NextPaginationToken: next}, nil
}

// ListNewLikedYou is ListLikedYou minus the users the recipient liked back.
func (s *Service) ListNewLikedYou(ctx context.Context, req *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	s.appCtx.Logger.Debug("ListNewLikedYou called", "recipient", req.RecipientUserID)
	if err := s.check(req); err != nil {
		return nil, err
	}
	likers, next, err := s.ledger.ListNewLikers(ctx, req.RecipientUserID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, s.fail("ListNewLikedYou", err)
	}
	return &ListLikedYouResponse{Likers: toLikers(likers), NextPaginationToken: next}, nil
}

// CountLikedYou returns how many users liked the recipient, served from
// Redis when cached.
func (s *Service) CountLikedYou(ctx context.Context, req *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	n, err := s.ledger.CountLikers(ctx, req.RecipientUserID)
	if err != nil {
		return nil, s.fail("CountLikedYou", err)
	}
	return &CountLikedYouResponse{Count: uint64(n)}, nil
}

// ScoreCompatibility scores two users from their charts and answers.
func (s *Service) ScoreCompatibility(ctx context.Context, req *ScoreCompatibilityRequest) (*ScoreCompatibilityResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.compat.Score(ctx, req.UserAID, req.UserBID)
	if errors.Is(err, compatibility.ErrNoScoringInput) {
		return nil, svcErr.Map(svcErr.NotFound("no chart or questionnaire data for this pair"))
	}
	if err != nil {
		return nil, s.fail("ScoreCompatibility", err)
	}
	return &ScoreCompatibilityResponse{Result: res}, nil
}

// PutNatalChart stores the user's chart and drops their cached scores.
func (s *Service) PutNatalChart(ctx context.Context, req *PutNatalChartRequest) (*PutNatalChartResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.compat.SaveChart(ctx, req.UserID, req.Chart); err != nil {
		return nil, s.fail("PutNatalChart", err)
	}
	return &PutNatalChartResponse{}, nil
}

// PutQuestionnaire stores the user's answers and drops their cached scores.
func (s *Service) PutQuestionnaire(ctx context.Context, req *PutQuestionnaireRequest) (*PutQuestionnaireResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.compat.SaveAnswers(ctx, req.UserID, req.Answers); err != nil {
		return nil, s.fail("PutQuestionnaire", err)
	}
	return &PutQuestionnaireResponse{}, nil
}

// CheckEligibility runs the mutual age, gender and distance checks.
func (s *Service) CheckEligibility(ctx context.Context, req *CheckEligibilityRequest) (*CheckEligibilityResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.eligibility.Check(ctx, req.UserAID, req.UserBID)
	if err != nil {
		return nil, s.fail("CheckEligibility", err)
	}
	return &CheckEligibilityResponse{Eligible: res.Eligible, Reasons: res.Reasons, DistanceKm: res.DistanceKm}, nil
}

// fail logs unexpected errors with detail and maps every error to a status.
func (s *Service) fail(method string, err error) error {
	if !svcErr.IsExpected(err) {
		s.appCtx.Logger.Error(method+" failed", "err", err)
	}
	return svcErr.Map(err)
}
