package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
)

// Decision is the matched user's answer to a request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// MaxResponseMessage is the longest response message accepted, in runes.
const MaxResponseMessage = 500

func (d Decision) status() (db.RequestStatus, bool) {
	switch d {
	case DecisionAccept:
		return db.RequestConfirmed, true
	case DecisionReject:
		return db.RequestRejected, true
	}
	return "", false
}

// RespondResult reports the answered request and, for an accept, the match.
type RespondResult struct {
	Request      *db.MatchRequest
	Updated      bool
	Match        *db.Match
	Conversation *db.Conversation
}

// Requests drives match requests from pending to confirmed or rejected.
type Requests struct {
	store    RequestStore
	profiles ProfileStore
	former   *Former
	scores   *Compatibility
	notifier notify.Dispatcher
	log      *slog.Logger
	now      func() time.Time
}

// NewRequests builds the request service. scores may be nil, in which case
// requests are created without a precomputed score.
func NewRequests(
	store RequestStore,
	profiles ProfileStore,
	former *Former,
	scores *Compatibility,
	notifier notify.Dispatcher,
	log *slog.Logger,
) *Requests {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Requests{
		store:    store,
		profiles: profiles,
		former:   former,
		scores:   scores,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a pending request from requesterID to matchedUserID, scored
// up front so an accept does not have to score again.
func (r *Requests) Create(ctx context.Context, requesterID, matchedUserID string) (*db.MatchRequest, error) {
	if err := validatePair(requesterID, matchedUserID); err != nil {
		return nil, err
	}
	for _, id := range []string{requesterID, matchedUserID} {
		p, err := r.profiles.GetProfile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		if p == nil || !p.Active {
			return nil, svcErr.NotFound("profile %s not found or not active", id)
		}
	}

	req := &db.MatchRequest{
		ID:            uuid.NewString(),
		RequesterID:   requesterID,
		MatchedUserID: matchedUserID,
		Status:        db.RequestPending,
	}
	if r.scores != nil {
		res, err := r.scores.Score(ctx, requesterID, matchedUserID)
		switch {
		case err == nil:
			score := res.OverallScore
			req.CompatibilityScore = &score
		case errors.Is(err, compatibility.ErrNoScoringInput):
		default:
			r.log.Warn("scoring new match request failed", "requester", requesterID, "matched", matchedUserID, "err", err)
		}
	}

	if err := r.store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create match request: %w", err)
	}
	r.log.Info("match request created", "request_id", req.ID, "requester", requesterID, "matched", matchedUserID)
	return req, nil
}

// Get returns a request by id.
func (r *Requests) Get(ctx context.Context, id string) (*db.MatchRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, svcErr.Validation("request id must be a UUID, got %q", id)
	}
	req, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load match request: %w", err)
	}
	if req == nil {
		return nil, svcErr.NotFound("match request %s not found", id)
	}
	return req, nil
}

// ListPending returns requests waiting for userID's answer, oldest first.
func (r *Requests) ListPending(ctx context.Context, userID string, limit int) ([]db.MatchRequest, error) {
	if err := ValidateUserID("user_id", userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	reqs, err := r.store.ListPendingFor(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}

// Respond records the matched user's decision on a pending request.
//
// Behavior:
//   - Unknown request → not found. A responder other than the matched user →
//     forbidden. A request that is no longer pending → conflict, except that
//     accepting a confirmed request again returns its match (forming it if
//     the first accept failed after confirming) with Updated=false.
//   - Accepting for a pair whose match is blocked or inactive is a conflict
//     and leaves the request pending.
//   - The status change is a conditional update from pending, so of two
//     concurrent responders exactly one wins; the other gets a conflict.
//   - Accept forms the match with the request's stored score and links it
//     back to the request.
//   - The requester is notified of either decision, without waiting.
func (r *Requests) Respond(ctx context.Context, requestID, responderID string, d Decision, message *string) (RespondResult, error) {
	next, ok := d.status()
	if !ok {
		return RespondResult{}, svcErr.Validation("decision must be accept or reject, got %q", d)
	}
	if err := ValidateUserID("responder_id", responderID); err != nil {
		return RespondResult{}, err
	}
	if message != nil && utf8.RuneCountInString(*message) > MaxResponseMessage {
		return RespondResult{}, svcErr.Validation("response message exceeds %d characters", MaxResponseMessage)
	}

	req, err := r.Get(ctx, requestID)
	if err != nil {
		return RespondResult{}, err
	}
	if req.MatchedUserID != responderID {
		return RespondResult{}, svcErr.Forbidden("only the matched user may respond to request %s", req.ID)
	}
	if req.Status == db.RequestConfirmed && d == DecisionAccept {
		// a repeated accept finishes what an earlier, failed one started
		return r.reformMatch(ctx, req)
	}
	if req.Status != db.RequestPending {
		return RespondResult{}, svcErr.Conflict("match request %s already responded (%s)", req.ID, req.Status)
	}
	if d == DecisionAccept {
		if err := r.former.checkFormable(ctx, req.RequesterID, req.MatchedUserID); err != nil {
			return RespondResult{}, err
		}
	}

	at := r.now()
	updated, err := r.store.UpdateStatus(ctx, req.ID, db.RequestPending, next, message, at)
	if err != nil {
		return RespondResult{}, fmt.Errorf("update match request: %w", err)
	}
	if !updated {
		return RespondResult{}, svcErr.Conflict("match request %s already responded", req.ID)
	}
	req.Status = next
	req.ResponseMessage = message
	req.RespondedAt = &at
	metrics.RequestResponses.WithLabelValues(string(d)).Inc()

	result := RespondResult{Request: req, Updated: true}
	if d == DecisionAccept {
		formed, err := r.formFromRequest(ctx, req)
		if err != nil {
			// the request stays confirmed; accepting it again re-runs formation
			r.log.Error("confirmed request could not form match", "request_id", req.ID, "err", err)
			return RespondResult{}, err
		}
		result.Match = formed.Match
		result.Conversation = formed.Conversation
	}

	r.notifyResponse(ctx, req, responderID, d, message, result.Match)
	r.log.Info("match request answered", "request_id", req.ID, "decision", d)
	return result, nil
}

// reformMatch answers a repeated accept of a confirmed request with the
// request's match, forming it if the first accept failed half way. The
// requester hears about it only when the match is created by this call.
func (r *Requests) reformMatch(ctx context.Context, req *db.MatchRequest) (RespondResult, error) {
	formed, err := r.formFromRequest(ctx, req)
	if err != nil {
		return RespondResult{}, err
	}
	if formed.Created {
		r.log.Info("confirmed request without match repaired", "request_id", req.ID, "match_id", formed.Match.ID)
		r.notifyResponse(ctx, req, req.MatchedUserID, DecisionAccept, req.ResponseMessage, formed.Match)
	}
	return RespondResult{Request: req, Match: formed.Match, Conversation: formed.Conversation}, nil
}

func (r *Requests) formFromRequest(ctx context.Context, req *db.MatchRequest) (FormResult, error) {
	id := req.ID
	formed, err := r.former.FormMatch(ctx, req.RequesterID, req.MatchedUserID, FormOptions{
		Score:           req.CompatibilityScore,
		SourceRequestID: &id,
	})
	if err != nil {
		return FormResult{}, fmt.Errorf("form match for request %s: %w", req.ID, err)
	}
	return formed, nil
}

func (r *Requests) notifyResponse(ctx context.Context, req *db.MatchRequest, responderID string, d Decision, message *string, m *db.Match) {
	ev := notify.MatchRequestResponse{
		RequestID:   req.ID,
		ResponderID: responderID,
		Decision:    string(d),
		Message:     message,
	}
	if m != nil {
		ev.MatchID = m.ID
	}
	if err := r.notifier.Notify(ctx, req.RequesterID, ev); err != nil {
		r.log.Warn("request response notification failed", "request_id", req.ID, "err", err)
	}
}
