// Package app wires the configuration into a database, a ledger, a question
// catalog and the services. The HTTP server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/vytor/quizflash/internal/config"
	"github.com/vytor/quizflash/internal/db"
	"github.com/vytor/quizflash/internal/ledger"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/questions"
	"github.com/vytor/quizflash/internal/repository"
	"github.com/vytor/quizflash/internal/repository/sqlite"
	"github.com/vytor/quizflash/internal/services"
)

type App struct {
	DB       *db.DB
	Slots    repository.SlotRepository
	Ledger   *ledger.Ledger
	Catalog  *questions.Catalog
	Quiz     services.QuizService
	Progress services.ProgressService
}

// New opens the database, loads the ledger and builds the services.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx).WithPrefix("app")

	source, err := newSource(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	slots := sqlite.NewSlotRepository(database.DB)
	l := ledger.New(slots, cfg.LedgerKey)
	l.Load(ctx)

	catalog := questions.NewCatalog(source, questions.NewParser(cfg.DelimiterRune()))

	var mu sync.Mutex
	a := &App{
		DB:      database,
		Slots:   slots,
		Ledger:  l,
		Catalog: catalog,
		Quiz: services.NewQuizService(&mu, catalog, l, services.QuizOptions{
			SessionSize: cfg.SessionSize,
		}),
		Progress: services.NewProgressService(&mu, l, slots, cfg.MaxImportBytes),
	}

	counts := l.Counts()
	log.Info("ready: %d mastered, %d missed", counts.Mastered, counts.Missed)
	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func newSource(cfg config.Config) (questions.Source, error) {
	if cfg.QuestionsURL != "" {
		src, err := questions.NewHTTPSource(cfg.QuestionsURL, cfg.SourceList, cfg.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("questions url: %w", err)
		}
		return src, nil
	}
	return questions.NewDirSource(cfg.QuestionsDir, cfg.SourceList), nil
}
