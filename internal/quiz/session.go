package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

var (
	// ErrInvalidTransition is returned when an operation is called outside
	// the state it requires. The session is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnknownOption is returned when the submitted answer is not one of
	// the current question's options.
	ErrUnknownOption = errors.New("answer is not one of the options")
)

// Ledger is what a session needs from the mastery ledger.
type Ledger interface {
	MasteryReader
	Outcome(id string) models.Outcome
	Record(ctx context.Context, id string, correct bool) error
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used for the start and finish timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand sets the random source for question and option order.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// Session is one quiz attempt. The zero state is NotStarted; Start moves it
// to AwaitingAnswer, SubmitAnswer to Answered, and Advance either back to
// AwaitingAnswer or to Finished after the last question.
//
// Invariants: 0 <= index <= len(questions) and score <= index (score may
// equal index+1 while the current question is answered but not advanced).
type Session struct {
	id        string
	ledger    Ledger
	rng       *rand.Rand
	now       func() time.Time
	sources   []string
	questions []models.Question
	options   [][]string
	prior     []models.Outcome // ledger outcome of each question before this attempt
	index     int
	score     int
	state     models.SessionState
	startedAt time.Time
	endedAt   time.Time
	last      *models.AnswerFeedback
}

// NewSession returns a session in the NotStarted state.
func NewSession(ledger Ledger, opts ...Option) *Session {
	s := &Session{
		ledger: ledger,
		now:    time.Now,
		state:  models.StateNotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the attempt over questions, which must be non-empty. The
// options of each question are shuffled independently for display.
func (s *Session) Start(ctx context.Context, sources []string, questions []models.Question) error {
	if s.state != models.StateNotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.state)
	}
	if len(questions) == 0 {
		return ErrNoQuestionsAvailable
	}

	s.begin(sources, questions)
	logger.FromContext(ctx).WithPrefix("quiz").
		WithFields(map[string]any{"session": s.id, "questions": len(questions)}).
		Info("quiz session started")
	return nil
}

// Restart discards the current attempt, whatever its state, and starts a new
// one over a fresh selection from pool against the live ledger. On
// ErrNoQuestionsAvailable the current attempt is kept.
func (s *Session) Restart(ctx context.Context, sources []string, pool []models.Question, targetSize int) error {
	selected, err := Select(pool, s.ledger, targetSize, s.rng)
	if err != nil {
		return err
	}

	prev := s.id
	s.begin(sources, selected)
	logger.FromContext(ctx).WithPrefix("quiz").
		WithFields(map[string]any{"session": s.id, "previous": prev, "questions": len(selected)}).
		Info("quiz session restarted")
	return nil
}

func (s *Session) begin(sources []string, questions []models.Question) {
	s.id = uuid.NewString()
	s.sources = append([]string(nil), sources...)
	s.questions = append([]models.Question(nil), questions...)
	s.options = make([][]string, len(questions))
	s.prior = make([]models.Outcome, len(questions))
	for i, q := range s.questions {
		opts := append([]string(nil), q.Options[:]...)
		Shuffle(s.rng, opts)
		s.options[i] = opts
		s.prior[i] = s.ledger.Outcome(q.ID)
	}
	s.index = 0
	s.score = 0
	s.last = nil
	s.state = models.StateAwaitingAnswer
	s.startedAt = s.now()
	s.endedAt = time.Time{}
}

// SubmitAnswer evaluates selected against the current question by exact
// string equality and records the outcome in the ledger. Exactly one ledger
// write happens per answered question; if it fails the session stays in
// AwaitingAnswer so the answer can be submitted again.
func (s *Session) SubmitAnswer(ctx context.Context, selected string) (models.AnswerFeedback, error) {
	if s.state != models.StateAwaitingAnswer {
		return models.AnswerFeedback{}, fmt.Errorf("%w: answer in %s", ErrInvalidTransition, s.state)
	}

	q := s.questions[s.index]
	if !q.HasOption(selected) {
		return models.AnswerFeedback{}, fmt.Errorf("%w: %q", ErrUnknownOption, selected)
	}

	correct := selected == q.CorrectOption
	if err := s.ledger.Record(ctx, q.ID, correct); err != nil {
		return models.AnswerFeedback{}, fmt.Errorf("record answer: %w", err)
	}

	if correct {
		s.score++
	}
	s.state = models.StateAnswered
	s.last = &models.AnswerFeedback{
		QuestionID:    q.ID,
		Selected:      selected,
		CorrectOption: q.CorrectOption,
		Correct:       correct,
		Score:         s.score,
	}

	logger.FromContext(ctx).WithPrefix("quiz").
		WithFields(map[string]any{"session": s.id, "question": q.ID, "correct": correct}).
		Debug("answer recorded")
	return *s.last, nil
}

// Advance moves past an answered question. After the last one the session
// finishes and the elapsed time is frozen.
func (s *Session) Advance(ctx context.Context) error {
	if s.state != models.StateAnswered {
		return fmt.Errorf("%w: advance in %s", ErrInvalidTransition, s.state)
	}

	s.index++
	s.last = nil
	if s.index == len(s.questions) {
		s.state = models.StateFinished
		s.endedAt = s.now()
		logger.FromContext(ctx).WithPrefix("quiz").
			WithFields(map[string]any{"session": s.id, "score": s.score, "total": len(s.questions)}).
			Info("quiz session finished in %s", s.endedAt.Sub(s.startedAt).Round(time.Millisecond))
		return nil
	}
	s.state = models.StateAwaitingAnswer
	return nil
}

// CheckID rejects operations addressed to a session other than this one.
func (s *Session) CheckID(id string) error {
	if s.state == models.StateNotStarted || id != s.id {
		return fmt.Errorf("%w: session %q is not the live session", ErrInvalidTransition, id)
	}
	return nil
}

// ID returns the identifier of the current attempt, empty before Start.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() models.SessionState { return s.state }

// Sources returns the source selection the attempt was built from.
func (s *Session) Sources() []string { return append([]string(nil), s.sources...) }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Len returns the number of questions in the attempt.
func (s *Session) Len() int { return len(s.questions) }

// Current returns the current question with its display order, or false
// when there is none.
func (s *Session) Current() (models.QuestionView, bool) {
	if !s.state.InProgress() {
		return models.QuestionView{}, false
	}
	q := s.questions[s.index]
	return models.QuestionView{
		ID:              q.ID,
		Source:          q.Source,
		Text:            q.Text,
		Options:         append([]string(nil), s.options[s.index]...),
		PreviousOutcome: s.prior[s.index],
	}, true
}

// Elapsed is derived from the start time rather than kept by a ticking timer:
// now - startedAt while in progress, frozen once finished.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch {
	case s.state == models.StateNotStarted:
		return 0
	case s.state == models.StateFinished:
		return s.endedAt.Sub(s.startedAt)
	default:
		return now.Sub(s.startedAt)
	}
}

// Result returns the final tally once the session has finished.
func (s *Session) Result() (models.QuizResult, bool) {
	if s.state != models.StateFinished {
		return models.QuizResult{}, false
	}
	return models.QuizResult{
		Score:   s.score,
		Wrong:   len(s.questions) - s.score,
		Total:   len(s.questions),
		Elapsed: s.Elapsed(s.endedAt),
	}, true
}

// View snapshots the session for the presentation layer.
func (s *Session) View() models.SessionView {
	now := s.now()
	v := models.SessionView{
		SessionID: s.id,
		State:     s.state,
		Sources:   s.Sources(),
		Index:     s.index,
		Total:     len(s.questions),
		Score:     s.score,
		StartedAt: s.startedAt,
		ElapsedMs: s.Elapsed(now).Milliseconds(),
	}
	if q, ok := s.Current(); ok {
		v.Question = &q
	}
	if s.last != nil {
		last := *s.last
		v.LastAnswer = &last
	}
	if r, ok := s.Result(); ok {
		v.Result = &r
	}
	return v
}
