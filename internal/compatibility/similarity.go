package compatibility

import (
	"errors"
	"strings"
)

// Answers maps a questionnaire question id to the chosen answer.
type Answers map[string]string

// Similarity scores two answer sets on a 0..100 scale. Implementations may call
// out to another service; an error degrades scoring to astrology only.
type Similarity interface {
	Similarity(a, b Answers) (float64, error)
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b Answers) (float64, error)

func (f SimilarityFunc) Similarity(a, b Answers) (float64, error) { return f(a, b) }

// ErrNoCommonQuestions is returned by AnswerOverlap when the two users have
// not answered any question in common.
var ErrNoCommonQuestions = errors.New("no questions answered by both users")

// AnswerOverlap is the in-process default: the share of commonly answered
// questions on which both users picked the same answer (case-insensitive).
type AnswerOverlap struct{}

func (AnswerOverlap) Similarity(a, b Answers) (float64, error) {
	var common, same int
	for q, ansA := range a {
		ansB, ok := b[q]
		if !ok {
			continue
		}
		common++
		if strings.EqualFold(strings.TrimSpace(ansA), strings.TrimSpace(ansB)) {
			same++
		}
	}
	if common == 0 {
		return 0, ErrNoCommonQuestions
	}
	return float64(same) * 100 / float64(common), nil
}
