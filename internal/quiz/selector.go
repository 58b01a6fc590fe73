package quiz

import (
	"errors"
	"math/rand/v2"

	"github.com/vytor/quizflash/internal/models"
)

// ErrNoQuestionsAvailable is returned when every question of the pool is
// already mastered, or the pool is empty.
var ErrNoQuestionsAvailable = errors.New("no questions available")

// MasteryReader is the read side of the mastery ledger.
type MasteryReader interface {
	IsMastered(id string) bool
}

// Select returns the questions for one attempt: the unmastered questions of
// pool in random order, cut to targetSize when there are more. A
// non-positive targetSize keeps every unmastered question.
func Select(pool []models.Question, ledger MasteryReader, targetSize int, rng *rand.Rand) ([]models.Question, error) {
	candidates := unmastered(pool, ledger)
	if len(candidates) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	Shuffle(rng, candidates)
	if targetSize > 0 && len(candidates) > targetSize {
		candidates = candidates[:targetSize]
	}
	return candidates, nil
}

// Remaining counts the questions of pool not yet mastered.
func Remaining(pool []models.Question, ledger MasteryReader) int {
	n := 0
	for _, q := range pool {
		if !ledger.IsMastered(q.ID) {
			n++
		}
	}
	return n
}

func unmastered(pool []models.Question, ledger MasteryReader) []models.Question {
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if !ledger.IsMastered(q.ID) {
			out = append(out, q)
		}
	}
	return out
}
