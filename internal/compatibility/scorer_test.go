package compatibility_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
)

func deg(v float64) *float64 { return &v }

// chart builds a chart from body → degree pairs.
func chart(positions map[compatibility.Body]float64) *compatibility.Chart {
	c := &compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{}}
	for b, d := range positions {
		c.Positions[b] = compatibility.Position{Sign: compatibility.SignOf(d), Degree: deg(d)}
	}
	return c
}

func signOnly(s compatibility.Sign) *compatibility.Chart {
	return &compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{
		compatibility.Sun: {Sign: s},
	}}
}

func TestSeparation_Wraparound(t *testing.T) {
	assert.InDelta(t, 20, compatibility.Separation(350, 10), 1e-9)
	assert.InDelta(t, 20, compatibility.Separation(10, 350), 1e-9)
	assert.InDelta(t, 2, compatibility.Separation(359, 1), 1e-9)
	assert.InDelta(t, 180, compatibility.Separation(0, 180), 1e-9)
	assert.InDelta(t, 0, compatibility.Separation(360, 0), 1e-9)
}

// TestClassify_TrineBoundary: exactly 120° is a trine with a positive
// contribution, one degree past the trine orb is not.
func TestClassify_TrineBoundary(t *testing.T) {
	t.Run("exact trine", func(t *testing.T) {
		a, ok := compatibility.Classify(120, compatibility.DefaultAspects)
		require.True(t, ok)
		assert.Equal(t, compatibility.Trine, a.Kind)

		score, kind := compatibility.PairScore(120, compatibility.DefaultAspects)
		assert.Equal(t, compatibility.Trine, kind)
		assert.Greater(t, score, compatibility.Baseline)
	})

	t.Run("default 8 degree orb edge is inclusive", func(t *testing.T) {
		a, ok := compatibility.Classify(128, compatibility.DefaultAspects)
		require.True(t, ok)
		assert.Equal(t, compatibility.Trine, a.Kind)
	})

	t.Run("default orb: one degree past the edge is not a trine", func(t *testing.T) {
		_, ok := compatibility.Classify(129, compatibility.DefaultAspects)
		assert.False(t, ok)
	})

	t.Run("default orb: 121 is still a trine", func(t *testing.T) {
		a, ok := compatibility.Classify(121, compatibility.DefaultAspects)
		require.True(t, ok)
		assert.Equal(t, compatibility.Trine, a.Kind)
	})

	t.Run("half degree orb: 121 is not a trine", func(t *testing.T) {
		tight := []compatibility.Aspect{{Kind: compatibility.Trine, Angle: 120, Orb: 0.5, Contribution: 45}}
		_, ok := compatibility.Classify(121, tight)
		assert.False(t, ok)
	})
}

func TestClassify_AllMajorAspects(t *testing.T) {
	cases := map[float64]compatibility.AspectKind{
		0:   compatibility.Conjunction,
		5:   compatibility.Conjunction,
		60:  compatibility.Sextile,
		93:  compatibility.Square,
		175: compatibility.Opposition,
		30:  compatibility.NoAspect,
		150: compatibility.NoAspect,
	}
	for d, want := range cases {
		_, kind := compatibility.PairScore(d, compatibility.DefaultAspects)
		assert.Equal(t, want, kind, "separation %v", d)
	}
}

func TestPairScore_Signs(t *testing.T) {
	base := compatibility.Baseline
	conj, _ := compatibility.PairScore(0, compatibility.DefaultAspects)
	sext, _ := compatibility.PairScore(60, compatibility.DefaultAspects)
	sq, _ := compatibility.PairScore(90, compatibility.DefaultAspects)
	opp, _ := compatibility.PairScore(180, compatibility.DefaultAspects)
	none, _ := compatibility.PairScore(30, compatibility.DefaultAspects)

	assert.Greater(t, conj, sext)
	assert.Greater(t, sext, base)
	assert.Less(t, sq, base)
	assert.Less(t, opp, base)
	assert.Equal(t, base, none)
}

// TestClassify_ClosestWins uses overlapping orbs: the aspect whose exact angle
// is closest wins regardless of its position in the table.
func TestClassify_ClosestWins(t *testing.T) {
	wide := []compatibility.Aspect{
		{Kind: compatibility.Square, Angle: 90, Orb: 20, Contribution: -15},
		{Kind: compatibility.Sextile, Angle: 60, Orb: 20, Contribution: 25},
	}

	a, ok := compatibility.Classify(72, wide)
	require.True(t, ok)
	assert.Equal(t, compatibility.Sextile, a.Kind)

	a, ok = compatibility.Classify(78, wide)
	require.True(t, ok)
	assert.Equal(t, compatibility.Square, a.Kind)

	// exact tie: order must not matter
	reversed := []compatibility.Aspect{wide[1], wide[0]}
	a1, _ := compatibility.Classify(75, wide)
	a2, _ := compatibility.Classify(75, reversed)
	assert.Equal(t, a1.Kind, a2.Kind)
}

func TestGradeFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  compatibility.Grade
	}{
		{100, "A+"}, {90, "A+"}, {89, "A"},
		{85, "A"}, {84, "B+"},
		{80, "B+"}, {79, "B"},
		{75, "B"}, {74, "C+"},
		{70, "C+"}, {69, "C"},
		{65, "C"}, {64, "D"},
		{60, "D"}, {59, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, compatibility.GradeFor(tc.score), "score %d", tc.score)
	}
}

func TestScore_BlendsSynastryAndQuestionnaire(t *testing.T) {
	s := compatibility.NewScorer(nil)

	a := chart(map[compatibility.Body]float64{compatibility.Sun: 10})
	b := chart(map[compatibility.Body]float64{compatibility.Sun: 130}) // trine
	res, err := s.Score(a, b,
		compatibility.Answers{"q1": "yes", "q2": "no"},
		compatibility.Answers{"q1": "yes", "q2": "yes"},
	)
	require.NoError(t, err)

	assert.Equal(t, compatibility.MethodSynastry, res.AstrologyMethod)
	assert.Equal(t, 95, res.AstrologicalScore)
	assert.Equal(t, compatibility.Grade("A+"), res.AstrologicalGrade)
	assert.Equal(t, 50, res.QuestionnaireScore)
	assert.Equal(t, compatibility.Grade("F"), res.QuestionnaireGrade)
	assert.Equal(t, 73, res.OverallScore) // round((95 + 50) / 2)
	assert.Equal(t, compatibility.Grade("C+"), res.OverallGrade)
	assert.True(t, res.IsMatchRecommended)
	assert.Equal(t, compatibility.Weights{Astrological: 0.5, Questionnaire: 0.5}, res.Weights)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, compatibility.Trine, res.Breakdown[0].Aspect)
}

func TestScore_OverallBlendsReportedSubScores(t *testing.T) {
	// 69.5 is reported as 70; the overall must follow the reported value
	sim := compatibility.SimilarityFunc(func(a, b compatibility.Answers) (float64, error) {
		return 69.5, nil
	})
	s := compatibility.NewScorer(sim)

	res, err := s.Score(signOnly(compatibility.Virgo), signOnly(compatibility.Pisces),
		compatibility.Answers{"q1": "x"}, compatibility.Answers{"q1": "x"})
	require.NoError(t, err)

	assert.Equal(t, 61, res.AstrologicalScore)
	assert.Equal(t, 70, res.QuestionnaireScore)
	assert.Equal(t, 66, res.OverallScore) // round((61 + 70) / 2), not round((61 + 69.5) / 2) = 65
}

func TestScore_WeightedMeanOverAvailablePairs(t *testing.T) {
	s := compatibility.NewScorer(nil)

	// Sun–Sun trine (95, w .12) and Moon–Moon square (35, w .10).
	// Sun(a)–Moon(b) = 170° and Moon(a)–Sun(b) = 140°: no aspect (50 each, w .10).
	a := chart(map[compatibility.Body]float64{compatibility.Sun: 0, compatibility.Moon: 100})
	b := chart(map[compatibility.Body]float64{compatibility.Sun: 240, compatibility.Moon: 190})

	astro, method, breakdown := s.Astrological(a, b)
	assert.Equal(t, compatibility.MethodSynastry, method)
	assert.Len(t, breakdown, 4)

	want := (95*0.12 + 35*0.10 + 50*0.10 + 50*0.10) / 0.42
	assert.InDelta(t, want, astro, 1e-9)
}

func TestScore_SunSignFallbackIsAsymmetric(t *testing.T) {
	s := compatibility.NewScorer(nil)

	ab, method, _ := s.Astrological(signOnly(compatibility.Aries), signOnly(compatibility.Leo))
	assert.Equal(t, compatibility.MethodSunSign, method)
	ba, _, _ := s.Astrological(signOnly(compatibility.Leo), signOnly(compatibility.Aries))

	assert.Equal(t, 94.0, ab)
	assert.Equal(t, 92.0, ba)
}

func TestScore_QuestionnaireFailureDegradesToAstrology(t *testing.T) {
	failing := compatibility.SimilarityFunc(func(a, b compatibility.Answers) (float64, error) {
		return 0, errors.New("questionnaire service unavailable")
	})
	s := compatibility.NewScorer(failing)

	a := chart(map[compatibility.Body]float64{compatibility.Sun: 10})
	b := chart(map[compatibility.Body]float64{compatibility.Sun: 130})
	res, err := s.Score(a, b, compatibility.Answers{"q1": "x"}, compatibility.Answers{"q1": "x"})
	require.NoError(t, err)

	assert.True(t, res.QuestionnaireUnavailable)
	assert.Contains(t, res.QuestionnaireError, "unavailable")
	assert.Empty(t, res.QuestionnaireGrade)
	assert.Equal(t, 95, res.OverallScore)
	assert.Equal(t, compatibility.Weights{Astrological: 1}, res.Weights)
}

func TestScore_NoChartsUsesQuestionnaireOnly(t *testing.T) {
	s := compatibility.NewScorer(nil)

	res, err := s.Score(nil, nil, compatibility.Answers{"q1": "a"}, compatibility.Answers{"q1": "a"})
	require.NoError(t, err)
	assert.Equal(t, compatibility.MethodUnavailable, res.AstrologyMethod)
	assert.Empty(t, res.AstrologicalGrade)
	assert.Equal(t, 100, res.OverallScore)
}

func TestScore_NothingToScore(t *testing.T) {
	s := compatibility.NewScorer(nil)
	_, err := s.Score(nil, nil, nil, nil)
	assert.ErrorIs(t, err, compatibility.ErrNoScoringInput)
}

func TestScore_Deterministic(t *testing.T) {
	s := compatibility.NewScorer(nil)
	a := chart(map[compatibility.Body]float64{
		compatibility.Sun: 12.5, compatibility.Moon: 200, compatibility.Venus: 33, compatibility.Mars: 301,
		compatibility.Ascendant: 87,
	})
	b := chart(map[compatibility.Body]float64{
		compatibility.Sun: 140, compatibility.Moon: 20, compatibility.Venus: 270, compatibility.Mars: 95,
		compatibility.Ascendant: 150,
	})
	qa := compatibility.Answers{"kids": "yes", "smoke": "no", "pets": "cats"}
	qb := compatibility.Answers{"kids": "yes", "smoke": "no", "pets": "dogs"}

	first, err := s.Score(a, b, qa, qb)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := s.Score(a, b, qa, qb)
			assert.NoError(t, err)
			assert.Equal(t, first, again)
		}()
	}
	wg.Wait()
}

func TestAnswerOverlap(t *testing.T) {
	v, err := compatibility.AnswerOverlap{}.Similarity(
		compatibility.Answers{"a": "Yes", "b": "no", "c": "x"},
		compatibility.Answers{"a": "yes ", "b": "yes", "d": "y"},
	)
	require.NoError(t, err)
	assert.InDelta(t, 50, v, 1e-9)

	_, err = compatibility.AnswerOverlap{}.Similarity(
		compatibility.Answers{"a": "1"}, compatibility.Answers{"b": "1"},
	)
	assert.ErrorIs(t, err, compatibility.ErrNoCommonQuestions)
}

func TestChart_Validate(t *testing.T) {
	ok := chart(map[compatibility.Body]float64{compatibility.Sun: 359.9})
	assert.NoError(t, ok.Validate())

	bad := &compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{
		compatibility.Moon: {Degree: deg(400)},
	}}
	assert.Error(t, bad.Validate())

	unknown := &compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{
		compatibility.Moon: {Sign: "ophiuchus"},
	}}
	assert.Error(t, unknown.Validate())
}
