package compatibility

import (
	"errors"
	"fmt"
	"math"
)

// Blend weights of the overall score. Fixed by product, not configuration.
const (
	AstrologicalWeight  = 0.5
	QuestionnaireWeight = 0.5

	// RecommendThreshold is the overall score from which a pair is recommended.
	RecommendThreshold = 70
)

// Method tells how the astrological sub-score was obtained.
type Method string

const (
	MethodSynastry    Method = "synastry"
	MethodSunSign     Method = "sun_sign"
	MethodUnavailable Method = "unavailable"
)

// ErrNoScoringInput is returned when neither astrology nor the questionnaire
// produced a sub-score.
var ErrNoScoringInput = errors.New("compatibility: no chart or questionnaire data to score")

// BodyPair compares a body in the first chart with a body in the second.
type BodyPair struct {
	A, B   Body
	Weight float64
}

// DefaultPairs weights the personal bodies and the classic cross-aspects
// (Sun/Moon, Venus/Mars) most heavily. Outer planets barely move the score
// because people born in the same years share them.
var DefaultPairs = []BodyPair{
	{Sun, Sun, 0.12},
	{Moon, Moon, 0.10},
	{Sun, Moon, 0.10},
	{Moon, Sun, 0.10},
	{Venus, Mars, 0.10},
	{Mars, Venus, 0.10},
	{Venus, Venus, 0.08},
	{Ascendant, Ascendant, 0.06},
	{Mars, Mars, 0.05},
	{Mercury, Mercury, 0.04},
	{Jupiter, Jupiter, 0.02},
	{Saturn, Saturn, 0.02},
	{Uranus, Uranus, 0.01},
	{Neptune, Neptune, 0.01},
	{Pluto, Pluto, 0.01},
}

// Weights reports the blend used for a result.
type Weights struct {
	Astrological  float64 `json:"astrological"`
	Questionnaire float64 `json:"questionnaire"`
}

// PairAspect is one line of the synastry breakdown.
type PairAspect struct {
	A          Body       `json:"a"`
	B          Body       `json:"b"`
	Separation float64    `json:"separation"`
	Aspect     AspectKind `json:"aspect"`
	Score      float64    `json:"score"`
	Weight     float64    `json:"weight"`
}

// Result is the outcome of scoring one pair. Grades of an unavailable
// sub-score are empty. OverallScore is blended from the reported (rounded)
// sub-scores, so a client can reproduce it from the fields below.
type Result struct {
	OverallScore       int   `json:"overall_score"`
	OverallGrade       Grade `json:"overall_grade"`
	AstrologicalScore  int   `json:"astrological_score"`
	AstrologicalGrade  Grade `json:"astrological_grade,omitempty"`
	QuestionnaireScore int   `json:"questionnaire_score"`
	QuestionnaireGrade Grade `json:"questionnaire_grade,omitempty"`

	Weights            Weights `json:"weights"`
	IsMatchRecommended bool    `json:"is_match_recommended"`

	AstrologyMethod          Method       `json:"astrology_method"`
	QuestionnaireUnavailable bool         `json:"questionnaire_unavailable"`
	QuestionnaireError       string       `json:"questionnaire_error,omitempty"`
	Breakdown                []PairAspect `json:"breakdown,omitempty"`
}

// Options overrides the default tables. Zero values fall back to defaults.
type Options struct {
	Aspects    []Aspect
	Pairs      []BodyPair
	Similarity Similarity
}

// Scorer computes compatibility. It holds only read-only tables and is safe
// for concurrent use.
type Scorer struct {
	aspects    []Aspect
	pairs      []BodyPair
	similarity Similarity
}

// NewScorer returns a scorer with the default tables and the given
// questionnaire collaborator (AnswerOverlap when nil).
func NewScorer(sim Similarity) *Scorer {
	return NewScorerWithOptions(Options{Similarity: sim})
}

func NewScorerWithOptions(o Options) *Scorer {
	s := &Scorer{aspects: o.Aspects, pairs: o.Pairs, similarity: o.Similarity}
	if len(s.aspects) == 0 {
		s.aspects = DefaultAspects
	}
	if len(s.pairs) == 0 {
		s.pairs = DefaultPairs
	}
	if s.similarity == nil {
		s.similarity = AnswerOverlap{}
	}
	return s
}

// Score combines the astrological and questionnaire sub-scores of two users.
// Either chart may be nil. A failing questionnaire collaborator does not fail
// the call: the result is flagged and falls back to astrology alone.
func (s *Scorer) Score(chartA, chartB *Chart, answersA, answersB Answers) (Result, error) {
	res := Result{Weights: Weights{Astrological: AstrologicalWeight, Questionnaire: QuestionnaireWeight}}

	astro, method, breakdown := s.Astrological(chartA, chartB)
	res.AstrologyMethod = method
	res.Breakdown = breakdown
	astroOK := method != MethodUnavailable
	if astroOK {
		res.AstrologicalScore = roundScore(astro)
		res.AstrologicalGrade = GradeFor(res.AstrologicalScore)
	}

	quest, qErr := s.questionnaire(answersA, answersB)
	questOK := qErr == nil
	if questOK {
		res.QuestionnaireScore = roundScore(quest)
		res.QuestionnaireGrade = GradeFor(res.QuestionnaireScore)
	} else {
		res.QuestionnaireUnavailable = true
		res.QuestionnaireError = qErr.Error()
	}

	switch {
	case astroOK && questOK:
		res.OverallScore = roundScore(float64(res.AstrologicalScore)*AstrologicalWeight +
			float64(res.QuestionnaireScore)*QuestionnaireWeight)
	case astroOK:
		res.Weights = Weights{Astrological: 1}
		res.OverallScore = roundScore(astro)
	case questOK:
		res.Weights = Weights{Questionnaire: 1}
		res.OverallScore = roundScore(quest)
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrNoScoringInput, qErr)
	}

	res.OverallGrade = GradeFor(res.OverallScore)
	res.IsMatchRecommended = res.OverallScore >= RecommendThreshold
	return res, nil
}

// Astrological returns the synastry score of two charts on a 0..100 scale.
// Pairs where either chart lacks a degree are skipped and the weighted mean
// is taken over the remaining weight. Without any usable pair it falls back to
// the Sun-sign table, and without Sun signs it reports MethodUnavailable.
func (s *Scorer) Astrological(a, b *Chart) (float64, Method, []PairAspect) {
	var (
		sum, weight float64
		breakdown   []PairAspect
	)
	for _, p := range s.pairs {
		da, okA := a.Degree(p.A)
		db, okB := b.Degree(p.B)
		if !okA || !okB || p.Weight <= 0 {
			continue
		}
		sep := Separation(da, db)
		score, kind := PairScore(sep, s.aspects)
		sum += score * p.Weight
		weight += p.Weight
		breakdown = append(breakdown, PairAspect{
			A: p.A, B: p.B, Separation: sep, Aspect: kind, Score: score, Weight: p.Weight,
		})
	}
	if weight > 0 {
		return sum / weight, MethodSynastry, breakdown
	}

	signA, okA := a.SunSign()
	signB, okB := b.SunSign()
	if okA && okB {
		if v, ok := SunSignScore(signA, signB); ok {
			return float64(v), MethodSunSign, nil
		}
	}
	return 0, MethodUnavailable, nil
}

func (s *Scorer) questionnaire(a, b Answers) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, errors.New("questionnaire not answered")
	}
	v, err := s.similarity.Similarity(a, b)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("questionnaire similarity returned %v", v)
	}
	return clamp(v, 0, 100), nil
}

func roundScore(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}
