package services

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/ledger"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/questions"
	"github.com/vytor/quizflash/internal/quiz"
)

// DefaultSessionSize is the number of questions per attempt.
const DefaultSessionSize = 10

// QuestionCatalog lists and loads question sources.
type QuestionCatalog interface {
	Sources(ctx context.Context) ([]models.Source, error)
	Load(ctx context.Context, names []string) questions.Pool
}

var _ QuestionCatalog = (*questions.Catalog)(nil)

// QuizService drives the single live quiz session.
type QuizService interface {
	Sources(ctx context.Context) ([]models.Source, error)
	Remaining(ctx context.Context, sources []string) (*models.Remaining, error)
	Start(ctx context.Context, sources []string) (*models.SessionView, error)
	Current(ctx context.Context) (*models.SessionView, error)
	Answer(ctx context.Context, sessionID, answer string) (*models.SessionView, error)
	Next(ctx context.Context, sessionID string) (*models.SessionView, error)
	Restart(ctx context.Context) (*models.SessionView, error)
	Abandon(ctx context.Context) error
}

// QuizOptions tunes a QuizService. Zero values select the defaults.
type QuizOptions struct {
	SessionSize int
	Rand        *rand.Rand
	Now         func() time.Time
}

type quizService struct {
	mu      sync.Locker
	catalog QuestionCatalog
	ledger  *ledger.Ledger
	opts    QuizOptions

	session *quiz.Session
	failed  []string
}

// NewQuizService creates a new QuizService. Every operation runs under mu,
// which must be the lock shared with the ProgressService over the same
// ledger.
func NewQuizService(mu sync.Locker, catalog QuestionCatalog, l *ledger.Ledger, opts QuizOptions) QuizService {
	if opts.SessionSize <= 0 {
		opts.SessionSize = DefaultSessionSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &quizService{mu: mu, catalog: catalog, ledger: l, opts: opts}
}

func (s *quizService) Sources(ctx context.Context) ([]models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("quiz_service")
	sources, err := s.catalog.Sources(ctx)
	if err != nil {
		log.Error("failed to list sources: %v", err)
		return nil, errors.NewSourceUnavailableError("source list", err)
	}
	return sources, nil
}

func (s *quizService) Remaining(ctx context.Context, sources []string) (*models.Remaining, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, names, err := s.loadPool(ctx, sources)
	if err != nil {
		return nil, err
	}

	remaining := quiz.Remaining(pool.Questions, s.ledger)
	return &models.Remaining{
		Sources:   names,
		Total:     len(pool.Questions),
		Mastered:  len(pool.Questions) - remaining,
		Remaining: remaining,
		Failed:    pool.FailedNames(),
	}, nil
}

func (s *quizService) Start(ctx context.Context, sources []string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("quiz_service")
	if s.session != nil && s.session.State().InProgress() {
		log.Debug("refusing to start: session %s in progress", s.session.ID())
		return nil, errors.NewSessionActiveError(s.session.ID())
	}

	return s.begin(ctx, sources)
}

func (s *quizService) Restart(ctx context.Context) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, errors.NewBadRequestError("no quiz to restart")
	}
	return s.begin(ctx, s.session.Sources())
}

// begin loads the selection and (re)starts the session on it. The previous
// session survives if no questions can be selected.
func (s *quizService) begin(ctx context.Context, sources []string) (*models.SessionView, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	pool, names, err := s.loadPool(ctx, sources)
	if err != nil {
		return nil, err
	}

	session := s.session
	if session == nil {
		session = quiz.NewSession(s.ledger, quiz.WithClock(s.opts.Now), quiz.WithRand(s.opts.Rand))
	}
	if err := session.Restart(ctx, names, pool.Questions, s.opts.SessionSize); err != nil {
		log.Info("quiz not started: %v", err)
		return nil, mapQuizError(err)
	}

	s.session = session
	s.failed = pool.FailedNames()
	return s.view(), nil
}

func (s *quizService) Current(ctx context.Context) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, errors.NewNotFoundError("quiz session", "current")
	}
	return s.view(), nil
}

func (s *quizService) Answer(ctx context.Context, sessionID, answer string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("quiz_service")
	if err := s.check(sessionID); err != nil {
		return nil, err
	}

	if _, err := s.session.SubmitAnswer(ctx, answer); err != nil {
		log.Warn("answer rejected: %v", err)
		return nil, mapQuizError(err)
	}
	return s.view(), nil
}

func (s *quizService) Next(ctx context.Context, sessionID string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(sessionID); err != nil {
		return nil, err
	}
	if err := s.session.Advance(ctx); err != nil {
		return nil, mapQuizError(err)
	}
	return s.view(), nil
}

func (s *quizService) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return errors.NewNotFoundError("quiz session", "current")
	}
	logger.FromContext(ctx).WithPrefix("quiz_service").Info("quiz session %s abandoned", s.session.ID())
	s.session = nil
	s.failed = nil
	return nil
}

func (s *quizService) check(sessionID string) error {
	if s.session == nil {
		return errors.NewNotFoundError("quiz session", sessionID)
	}
	if err := s.session.CheckID(sessionID); err != nil {
		return errors.NewInvalidTransitionError(err)
	}
	return nil
}

func (s *quizService) view() *models.SessionView {
	v := s.session.View()
	v.FailedSource = s.failed
	return &v
}

// loadPool resolves an empty selection to every listed source and loads the
// questions. It fails only when nothing could be fetched at all.
func (s *quizService) loadPool(ctx context.Context, names []string) (questions.Pool, []string, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	if len(names) == 0 {
		sources, err := s.catalog.Sources(ctx)
		if err != nil {
			log.Error("failed to list sources: %v", err)
			return questions.Pool{}, nil, errors.NewSourceUnavailableError("source list", err)
		}
		for _, src := range sources {
			names = append(names, src.Name)
		}
	}

	pool := s.catalog.Load(ctx, names)
	if len(pool.Questions) == 0 && len(pool.Failed) > 0 {
		first := pool.Failed[0]
		return questions.Pool{}, nil, errors.NewSourceUnavailableError(first.Source, first.Err)
	}
	return pool, names, nil
}

func mapQuizError(err error) error {
	switch {
	case stderrors.Is(err, quiz.ErrNoQuestionsAvailable):
		return errors.NewNoQuestionsError()
	case stderrors.Is(err, quiz.ErrInvalidTransition):
		return errors.NewInvalidTransitionError(err)
	case stderrors.Is(err, quiz.ErrUnknownOption):
		return errors.NewValidationError("answer", "must be one of the question's options")
	case stderrors.Is(err, ledger.ErrUnavailable):
		return errors.NewLedgerUnavailableError(err)
	default:
		return errors.NewInternalError(err)
	}
}
