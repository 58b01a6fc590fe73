package questions

import (
	"context"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

// SourceError records a source that contributed nothing because it could not
// be fetched.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string { return e.Err.Error() }
func (e SourceError) Unwrap() error { return e.Err }

// Pool is the concatenation of the questions of several sources.
type Pool struct {
	Questions []models.Question
	Dropped   []LineError
	Failed    []SourceError
}

// FailedNames returns the names of the sources that could not be fetched.
func (p Pool) FailedNames() []string {
	if len(p.Failed) == 0 {
		return nil
	}
	names := make([]string, len(p.Failed))
	for i, f := range p.Failed {
		names[i] = f.Source
	}
	return names
}

// Catalog combines a Source with a Parser.
type Catalog struct {
	source Source
	parser Parser
}

// NewCatalog returns a catalog reading from source.
func NewCatalog(source Source, parser Parser) *Catalog {
	return &Catalog{source: source, parser: parser}
}

// Sources lists the available sources with display names.
func (c *Catalog) Sources(ctx context.Context) ([]models.Source, error) {
	names, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Source, len(names))
	for i, n := range names {
		out[i] = models.Source{Name: n, DisplayName: DisplayName(n)}
	}
	return out, nil
}

// Load fetches and parses each named source in order. A source that cannot
// be fetched is recorded in Pool.Failed and does not stop the others.
// Sources are fetched one at a time.
func (c *Catalog) Load(ctx context.Context, names []string) Pool {
	log := logger.FromContext(ctx).WithPrefix("catalog")

	var pool Pool
	for _, name := range names {
		content, err := c.source.Fetch(ctx, name)
		if err != nil {
			log.Warn("source %s unavailable: %v", name, err)
			pool.Failed = append(pool.Failed, SourceError{Source: name, Err: err})
			continue
		}
		qs, dropped := c.parser.Parse(ctx, name, content)
		pool.Questions = append(pool.Questions, qs...)
		pool.Dropped = append(pool.Dropped, dropped...)
	}

	log.Info("loaded %d questions from %d sources (%d unavailable, %d lines dropped)",
		len(pool.Questions), len(names), len(pool.Failed), len(pool.Dropped))
	return pool
}
