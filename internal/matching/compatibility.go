package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
)

// Compatibility loads both users' charts and answers and scores the pair.
//
// Results are always computed in canonical order so both directions of a
// pair get the same answer, and are cached under that order when a cache is
// configured. The scorer itself is pure; all I/O lives here.
type Compatibility struct {
	scorer *compatibility.Scorer
	inputs ChartStore
	cache  CompatibilityCache
	log    *slog.Logger
}

// NewCompatibility wires a scorer to its inputs. cache may be nil.
func NewCompatibility(scorer *compatibility.Scorer, inputs ChartStore, cache CompatibilityCache, log *slog.Logger) *Compatibility {
	return &Compatibility{scorer: scorer, inputs: inputs, cache: cache, log: log}
}

type scoringInput struct {
	chart   *compatibility.Chart
	answers compatibility.Answers
}

// Score returns the compatibility of userA and userB, or
// compatibility.ErrNoScoringInput when there is nothing to compare.
func (c *Compatibility) Score(ctx context.Context, userA, userB string) (compatibility.Result, error) {
	defer metrics.ObserveSince(metrics.CompatibilityDuration, time.Now())

	if err := validatePair(userA, userB); err != nil {
		return compatibility.Result{}, err
	}
	u1, u2 := Canonical(userA, userB)

	if c.cache != nil {
		cached, err := c.cache.GetCompatibility(ctx, u1, u2)
		if err != nil {
			c.log.Warn("compatibility cache read failed", "user1", u1, "user2", u2, "err", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	var in1, in2 scoringInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { in1, err = c.load(gctx, u1); return })
	g.Go(func() (err error) { in2, err = c.load(gctx, u2); return })
	if err := g.Wait(); err != nil {
		return compatibility.Result{}, err
	}

	res, err := c.scorer.Score(in1.chart, in2.chart, in1.answers, in2.answers)
	if err != nil {
		return compatibility.Result{}, err
	}
	if res.QuestionnaireUnavailable && res.QuestionnaireError != "" {
		c.log.Debug("questionnaire score unavailable", "user1", u1, "user2", u2, "reason", res.QuestionnaireError)
	}

	if c.cache != nil {
		if err := c.cache.SetCompatibility(ctx, u1, u2, res); err != nil {
			c.log.Warn("compatibility cache write failed", "user1", u1, "user2", u2, "err", err)
		}
	}
	return res, nil
}

func (c *Compatibility) load(ctx context.Context, userID string) (scoringInput, error) {
	chart, err := c.inputs.GetChart(ctx, userID)
	if err != nil {
		return scoringInput{}, fmt.Errorf("load chart for %s: %w", userID, err)
	}
	if chart != nil {
		if verr := chart.Validate(); verr != nil {
			// a malformed chart is treated as missing rather than failing scoring
			c.log.Warn("ignoring invalid chart", "user", userID, "err", verr)
			chart = nil
		}
	}
	answers, err := c.inputs.GetAnswers(ctx, userID)
	if err != nil {
		return scoringInput{}, fmt.Errorf("load answers for %s: %w", userID, err)
	}
	return scoringInput{chart: chart, answers: answers}, nil
}

// scoreOrNil is what formation uses: any failure leaves the match unscored.
func (c *Compatibility) scoreOrNil(ctx context.Context, userA, userB string) *int {
	res, err := c.Score(ctx, userA, userB)
	if err != nil {
		if !errors.Is(err, compatibility.ErrNoScoringInput) {
			c.log.Warn("compatibility scoring failed, storing match without score",
				"user_a", userA, "user_b", userB, "err", err)
		}
		return nil
	}
	score := res.OverallScore
	return &score
}

// SaveChart replaces userID's natal chart and drops every cached result the
// old chart produced.
func (c *Compatibility) SaveChart(ctx context.Context, userID string, chart compatibility.Chart) error {
	if err := ValidateUserID("user_id", userID); err != nil {
		return err
	}
	if err := chart.Validate(); err != nil {
		return svcErr.Validation("invalid chart: %v", err)
	}
	if err := c.inputs.SaveChart(ctx, userID, chart); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	c.invalidate(ctx, userID)
	return nil
}

// SaveAnswers replaces userID's questionnaire answers and drops the cached
// results that used the old ones.
func (c *Compatibility) SaveAnswers(ctx context.Context, userID string, answers compatibility.Answers) error {
	if err := ValidateUserID("user_id", userID); err != nil {
		return err
	}
	if len(answers) == 0 {
		return svcErr.Validation("answers must not be empty")
	}
	if err := c.inputs.SaveAnswers(ctx, userID, answers); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *Compatibility) invalidate(ctx context.Context, userID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateCompatibility(ctx, userID); err != nil {
		c.log.Warn("compatibility cache invalidation failed", "user", userID, "err", err)
	}
}
