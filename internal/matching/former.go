package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

var tracer = otel.Tracer("matchmaking.matching")

const defaultListLimit = 50

// FormOptions carries what a caller may already know about the new match.
type FormOptions struct {
	// Score is used as is when set; otherwise the pair is scored.
	Score *int
	// SourceRequestID links the match to the request that produced it.
	SourceRequestID *string
}

// FormResult is the match for the pair and its conversation. Created is true
// only for the one call that inserted the row. Conversation may be nil when
// creating it failed; the next read repairs it.
type FormResult struct {
	Match        *db.Match
	Conversation *db.Conversation
	Created      bool
}

// Former is the single place matches are created.
type Former struct {
	matches  MatchStore
	scores   *Compatibility
	notifier notify.Dispatcher
	log      *slog.Logger
}

// NewFormer builds a Former. scores may be nil, in which case matches
// without a caller-supplied score are stored unscored.
func NewFormer(matches MatchStore, scores *Compatibility, notifier notify.Dispatcher, log *slog.Logger) *Former {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Former{matches: matches, scores: scores, notifier: notifier, log: log}
}

// FormMatch returns the match between userA and userB, creating it if needed.
//
// Behavior:
//   - The pair is canonicalized first, so FormMatch(a, b) and FormMatch(b, a)
//     target the same row.
//   - An existing active match is returned with Created=false. A blocked or
//     inactive match is a conflict: formation never revives it.
//   - Otherwise the row is inserted with ON CONFLICT DO NOTHING. Losing a
//     concurrent race is not an error: the winner's row is re-read and
//     returned with Created=false.
//   - The winner creates the conversation and notifies both users.
//     A failed conversation insert is logged and left for repair.
func (f *Former) FormMatch(ctx context.Context, userA, userB string, opts FormOptions) (FormResult, error) {
	if err := validatePair(userA, userB); err != nil {
		return FormResult{}, err
	}
	u1, u2 := Canonical(userA, userB)

	ctx, span := tracer.Start(ctx, "matching.FormMatch", trace.WithAttributes(
		attribute.String("match.user1_id", u1),
		attribute.String("match.user2_id", u2),
		attribute.Bool("match.from_request", opts.SourceRequestID != nil),
	))
	defer span.End()

	res, err := f.formMatch(ctx, u1, u2, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "form match failed")
		return FormResult{}, err
	}
	span.SetAttributes(
		attribute.String("match.id", res.Match.ID),
		attribute.Bool("match.created", res.Created),
	)
	return res, nil
}

func (f *Former) formMatch(ctx context.Context, u1, u2 string, opts FormOptions) (FormResult, error) {
	existing, err := f.matches.FindMatch(ctx, u1, u2)
	if err != nil {
		return FormResult{}, fmt.Errorf("find match: %w", err)
	}
	if existing != nil {
		if err := requireActive(existing); err != nil {
			return FormResult{}, err
		}
		metrics.MatchesFormed.WithLabelValues(metrics.OutcomeExisting).Inc()
		return FormResult{Match: existing, Conversation: f.conversationOrNil(ctx, existing)}, nil
	}

	score := opts.Score
	if score == nil && f.scores != nil {
		score = f.scores.scoreOrNil(ctx, u1, u2)
	}

	m := &db.Match{
		ID:                 uuid.NewString(),
		User1ID:            u1,
		User2ID:            u2,
		Status:             db.MatchActive,
		CompatibilityScore: score,
		SourceRequestID:    opts.SourceRequestID,
	}
	outcome, err := f.matches.InsertMatchIfAbsent(ctx, m)
	if err != nil {
		return FormResult{}, fmt.Errorf("insert match: %w", err)
	}

	if outcome == repository.AlreadyExisted {
		metrics.MatchesFormed.WithLabelValues(metrics.OutcomeRaceResolved).Inc()
		winner, err := f.matches.FindMatch(ctx, u1, u2)
		if err != nil {
			return FormResult{}, fmt.Errorf("re-read match after conflict: %w", err)
		}
		if winner == nil {
			return FormResult{}, fmt.Errorf("match for %s/%s conflicted but cannot be read", u1, u2)
		}
		if err := requireActive(winner); err != nil {
			return FormResult{}, err
		}
		f.log.Debug("match race resolved", "match_id", winner.ID, "user1", u1, "user2", u2)
		return FormResult{Match: winner, Conversation: f.conversationOrNil(ctx, winner)}, nil
	}

	metrics.MatchesFormed.WithLabelValues(metrics.OutcomeCreated).Inc()
	f.log.Info("match created", "match_id", m.ID, "user1", u1, "user2", u2, "score", score)

	conv, err := f.ensureConversation(ctx, m, false)
	if err != nil {
		f.log.Warn("match created without conversation, will repair on next access",
			"match_id", m.ID, "err", err)
	}

	f.notifyCreated(ctx, m, conv)
	return FormResult{Match: m, Conversation: conv, Created: true}, nil
}

// requireActive refuses to hand out a blocked or inactive match as the result
// of formation. Those rows are never reactivated here.
func requireActive(m *db.Match) error {
	if m.Status != db.MatchActive {
		return svcErr.Conflict("match between %s and %s is %s", m.User1ID, m.User2ID, m.Status)
	}
	return nil
}

// checkFormable reports a conflict when the pair already has a match that
// formation would refuse to return.
func (f *Former) checkFormable(ctx context.Context, userA, userB string) error {
	u1, u2 := Canonical(userA, userB)
	m, err := f.matches.FindMatch(ctx, u1, u2)
	if err != nil {
		return fmt.Errorf("find match: %w", err)
	}
	if m == nil {
		return nil
	}
	return requireActive(m)
}

// GetMatch returns the match between two users and repairs a missing
// conversation on the way.
func (f *Former) GetMatch(ctx context.Context, userA, userB string) (FormResult, error) {
	if err := validatePair(userA, userB); err != nil {
		return FormResult{}, err
	}
	u1, u2 := Canonical(userA, userB)
	m, err := f.matches.FindMatch(ctx, u1, u2)
	if err != nil {
		return FormResult{}, fmt.Errorf("find match: %w", err)
	}
	if m == nil {
		return FormResult{}, svcErr.NotFound("no match between %s and %s", u1, u2)
	}
	return FormResult{Match: m, Conversation: f.conversationOrNil(ctx, m)}, nil
}

// ListMatches returns the user's active matches, newest first.
func (f *Former) ListMatches(ctx context.Context, userID string, limit int) ([]db.Match, error) {
	if err := ValidateUserID("user_id", userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	matches, err := f.matches.ListMatchesForUser(ctx, userID, db.MatchActive, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// EnsureConversation returns the match's conversation, creating it if it is
// missing. Safe to call concurrently: the store allows one conversation per
// match and the loser reads the winner's row.
func (f *Former) EnsureConversation(ctx context.Context, m *db.Match) (*db.Conversation, error) {
	return f.ensureConversation(ctx, m, true)
}

func (f *Former) ensureConversation(ctx context.Context, m *db.Match, repair bool) (*db.Conversation, error) {
	conv, err := f.matches.FindConversationByMatch(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	if conv == nil {
		c := &db.Conversation{
			ID:      uuid.NewString(),
			MatchID: m.ID,
			User1ID: m.User1ID,
			User2ID: m.User2ID,
		}
		outcome, err := f.matches.InsertConversation(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("insert conversation: %w", err)
		}
		if outcome == repository.Inserted {
			conv = c
			if repair {
				metrics.ConversationRepairs.Inc()
				f.log.Info("conversation repaired", "match_id", m.ID, "conversation_id", c.ID)
			}
		} else {
			conv, err = f.matches.FindConversationByMatch(ctx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("re-read conversation: %w", err)
			}
			if conv == nil {
				return nil, fmt.Errorf("conversation for match %s conflicted but cannot be read", m.ID)
			}
		}
	}

	if m.ConversationID == nil || *m.ConversationID != conv.ID {
		if err := f.matches.AttachConversation(ctx, m.ID, conv.ID); err != nil {
			return conv, fmt.Errorf("attach conversation: %w", err)
		}
		id := conv.ID
		m.ConversationID = &id
	}
	return conv, nil
}

func (f *Former) conversationOrNil(ctx context.Context, m *db.Match) *db.Conversation {
	conv, err := f.EnsureConversation(ctx, m)
	if err != nil {
		f.log.Warn("conversation repair failed", "match_id", m.ID, "err", err)
	}
	return conv
}

func (f *Former) notifyCreated(ctx context.Context, m *db.Match, conv *db.Conversation) {
	var convID string
	if conv != nil {
		convID = conv.ID
	}
	for _, userID := range []string{m.User1ID, m.User2ID} {
		ev := notify.MatchCreated{MatchID: m.ID, OtherUserID: m.OtherUser(userID), ConversationID: convID}
		if err := f.notifier.Notify(ctx, userID, ev); err != nil {
			f.log.Warn("match notification failed", "match_id", m.ID, "user", userID, "err", err)
		}
	}
}
