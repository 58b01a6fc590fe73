package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/db"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/questions"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection is used so every query sees the same memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(Context(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Context returns a background context carrying a silent logger.
func Context() context.Context {
	return logger.NewContext(context.Background(), logger.Discard())
}

// Question builds a valid question whose correct option is the first one.
func Question(text string) models.Question {
	q := models.Question{
		Source:        "test.csv",
		Text:          text,
		Options:       [models.OptionCount]string{text + " A", text + " B", text + " C", text + " D"},
		CorrectOption: text + " A",
	}
	q.ID = questions.Fingerprint(q.Text, q.CorrectOption)
	return q
}

// Questions builds n distinct questions named Q1..Qn.
func Questions(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = Question("Q" + strconv.Itoa(i+1))
	}
	return out
}

// CSV renders questions as source lines, one per question.
func CSV(qs []models.Question) string {
	var b strings.Builder
	for _, q := range qs {
		b.WriteString(q.Text)
		for _, o := range q.Options {
			b.WriteString(",")
			b.WriteString(o)
		}
		b.WriteString(",")
		b.WriteString(q.CorrectOption)
		b.WriteString("\n")
	}
	return b.String()
}
