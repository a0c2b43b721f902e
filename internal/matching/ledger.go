package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/db"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
	"github.com/oggyb/muzz-matchmaking/internal/utils/pagination"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SwipeOutcome is what a recorded swipe led to. Match is set when the swipe
// completed a mutual like, or when a duplicate swipe found the pair already
// matched.
type SwipeOutcome struct {
	Swipe        *db.Swipe
	Match        *db.Match
	Conversation *db.Conversation
	MatchCreated bool
}

// Liker is one entry of a "who liked me" list.
type Liker struct {
	UserID  string
	LikedAt time.Time
}

// Ledger records likes and passes and detects mutual likes.
type Ledger struct {
	swipes   SwipeStore
	profiles ProfileStore
	matches  MatchStore
	former   *Former
	counts   LikeCountCache
	notifier notify.Dispatcher
	log      *slog.Logger
}

// NewLedger builds a Ledger. counts may be nil to disable count caching.
func NewLedger(
	swipes SwipeStore,
	profiles ProfileStore,
	matches MatchStore,
	former *Former,
	counts LikeCountCache,
	notifier notify.Dispatcher,
	log *slog.Logger,
) *Ledger {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Ledger{
		swipes:   swipes,
		profiles: profiles,
		matches:  matches,
		former:   former,
		counts:   counts,
		notifier: notifier,
		log:      log,
	}
}

// RecordSwipe stores swiper's decision on swiped.
//
// Behavior:
//   - Self-swipes, malformed ids and unknown types are validation errors;
//     nothing is written.
//   - The swiped user must have an active profile.
//   - A swipe is written once. Repeating it is a conflict, unless the pair is
//     already matched (the match is returned) or both likes are stored
//     without a match (the match is formed now).
//   - A like that meets a reverse like forms the match; a like that does not
//     notifies the swiped user.
//   - A pass never forms a match, now or later.
func (l *Ledger) RecordSwipe(ctx context.Context, swiperID, swipedID string, t db.SwipeType) (SwipeOutcome, error) {
	if err := ValidateUserID("swiper_id", swiperID); err != nil {
		return SwipeOutcome{}, err
	}
	if err := ValidateUserID("swiped_id", swipedID); err != nil {
		return SwipeOutcome{}, err
	}
	if swiperID == swipedID {
		return SwipeOutcome{}, svcErr.Validation("cannot swipe on yourself")
	}
	if !t.Valid() {
		return SwipeOutcome{}, svcErr.Validation("swipe type must be like or pass, got %q", t)
	}

	if err := l.requireProfiles(ctx, swiperID, swipedID); err != nil {
		return SwipeOutcome{}, err
	}

	s := &db.Swipe{SwiperID: swiperID, SwipedID: swipedID, Type: t}
	outcome, err := l.swipes.InsertSwipe(ctx, s)
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("insert swipe: %w", err)
	}
	if outcome == repository.AlreadyExisted {
		return l.duplicate(ctx, swiperID, swipedID)
	}

	metrics.Swipes.WithLabelValues(string(t)).Inc()
	l.invalidateCount(ctx, s)

	if t == db.SwipePass {
		return SwipeOutcome{Swipe: s}, nil
	}

	mutual, err := l.swipes.HasLiked(ctx, swipedID, swiperID)
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("check reverse like: %w", err)
	}
	if !mutual {
		if err := l.notifier.Notify(ctx, swipedID, notify.LikeReceived{FromUserID: swiperID}); err != nil {
			l.log.Warn("like notification failed", "swiper", swiperID, "swiped", swipedID, "err", err)
		}
		return SwipeOutcome{Swipe: s}, nil
	}

	res, err := l.former.FormMatch(ctx, swiperID, swipedID, FormOptions{})
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("form match: %w", err)
	}
	return SwipeOutcome{
		Swipe:        s,
		Match:        res.Match,
		Conversation: res.Conversation,
		MatchCreated: res.Created,
	}, nil
}

func (l *Ledger) requireProfiles(ctx context.Context, swiperID, swipedID string) error {
	swiper, err := l.profiles.GetProfile(ctx, swiperID)
	if err != nil {
		return fmt.Errorf("load swiper profile: %w", err)
	}
	if swiper == nil {
		return svcErr.NotFound("profile %s not found", swiperID)
	}
	swiped, err := l.profiles.GetProfile(ctx, swipedID)
	if err != nil {
		return fmt.Errorf("load swiped profile: %w", err)
	}
	if swiped == nil || !swiped.Active {
		return svcErr.NotFound("profile %s not found or not active", swipedID)
	}
	return nil
}

// duplicate handles a swipe that was already on record.
//
//   - If the pair is matched, the caller gets the match.
//   - If both likes are stored but the match is missing (formation failed
//     after the swipe was written), formation is re-run. FormMatch is
//     idempotent, so a retry from either user repairs the pair.
//   - Anything else is a conflict.
func (l *Ledger) duplicate(ctx context.Context, swiperID, swipedID string) (SwipeOutcome, error) {
	existing, err := l.swipes.GetSwipe(ctx, swiperID, swipedID)
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("load swipe: %w", err)
	}

	u1, u2 := Canonical(swiperID, swipedID)
	m, err := l.matches.FindMatch(ctx, u1, u2)
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("find match: %w", err)
	}
	if m != nil {
		if m.Status != db.MatchActive {
			return SwipeOutcome{}, svcErr.Conflict("already swiped on %s", swipedID)
		}
		return SwipeOutcome{
			Swipe:        existing,
			Match:        m,
			Conversation: l.former.conversationOrNil(ctx, m),
		}, nil
	}

	if existing == nil || existing.Type != db.SwipeLike {
		return SwipeOutcome{}, svcErr.Conflict("already swiped on %s", swipedID)
	}
	mutual, err := l.swipes.HasLiked(ctx, swipedID, swiperID)
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("check reverse like: %w", err)
	}
	if !mutual {
		return SwipeOutcome{}, svcErr.Conflict("already swiped on %s", swipedID)
	}

	res, err := l.former.FormMatch(ctx, swiperID, swipedID, FormOptions{})
	if err != nil {
		return SwipeOutcome{}, fmt.Errorf("form match: %w", err)
	}
	if res.Created {
		l.log.Info("mutual like without match repaired", "swiper", swiperID, "swiped", swipedID, "match_id", res.Match.ID)
	}
	return SwipeOutcome{
		Swipe:        existing,
		Match:        res.Match,
		Conversation: res.Conversation,
		MatchCreated: res.Created,
	}, nil
}

// invalidateCount drops the cached liker count a swipe may have changed: a
// like adds to the swiped user's count, a pass can hide one of the swiper's
// likers.
func (l *Ledger) invalidateCount(ctx context.Context, s *db.Swipe) {
	if l.counts == nil {
		return
	}
	owner := s.SwipedID
	if s.Type == db.SwipePass {
		owner = s.SwiperID
	}
	if err := l.counts.InvalidateLikeCount(ctx, owner); err != nil {
		l.log.Warn("like count invalidation failed", "user", owner, "err", err)
	}
}

// ListLikers returns users who liked recipientID and were not passed by them,
// newest first.
func (l *Ledger) ListLikers(ctx context.Context, recipientID string, pageToken *string, limit int) ([]Liker, *string, error) {
	return l.list(ctx, recipientID, pageToken, limit, l.swipes.GetLikers)
}

// ListNewLikers is ListLikers without the users recipientID already liked back.
func (l *Ledger) ListNewLikers(ctx context.Context, recipientID string, pageToken *string, limit int) ([]Liker, *string, error) {
	return l.list(ctx, recipientID, pageToken, limit, l.swipes.GetNewLikers)
}

type likersFunc func(ctx context.Context, recipientID string, token *string, limit int) ([]db.Swipe, *string, error)

func (l *Ledger) list(ctx context.Context, recipientID string, pageToken *string, limit int, fetch likersFunc) ([]Liker, *string, error) {
	if err := ValidateUserID("recipient_user_id", recipientID); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	swipes, next, err := fetch(ctx, recipientID, pageToken, limit)
	if errors.Is(err, pagination.ErrInvalidToken) {
		return nil, nil, svcErr.Validation("invalid pagination token")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("list likers: %w", err)
	}

	likers := make([]Liker, 0, len(swipes))
	for _, s := range swipes {
		likers = append(likers, Liker{UserID: s.SwiperID, LikedAt: s.CreatedAt})
	}
	return likers, next, nil
}

// CountLikers returns how many users liked recipientID and were not passed.
// Cache-first:
//  1. Reads likes:count:<id> from Redis.
//  2. On a miss, counts in the DB and writes the count back.
//
// Cache errors are logged and fall through to the DB.
func (l *Ledger) CountLikers(ctx context.Context, recipientID string) (int64, error) {
	if err := ValidateUserID("recipient_user_id", recipientID); err != nil {
		return 0, err
	}

	if l.counts != nil {
		n, ok, err := l.counts.GetLikeCount(ctx, recipientID)
		if err != nil {
			l.log.Warn("like count cache read failed", "user", recipientID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	n, err := l.swipes.CountLikers(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count likers: %w", err)
	}

	if l.counts != nil {
		if err := l.counts.UpdateLikeCount(ctx, recipientID, n); err != nil {
			l.log.Warn("like count cache write failed", "user", recipientID, "err", err)
		}
	}
	return n, nil
}
