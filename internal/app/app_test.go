package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/app"
	"github.com/vytor/quizflash/internal/config"
	"github.com/vytor/quizflash/internal/testutil"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	questionsDir := filepath.Join(dir, "questions")
	require.NoError(t, os.Mkdir(questionsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(questionsDir, "sources.txt"), []byte("a.csv\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(questionsDir, "a.csv"), []byte(testutil.CSV(testutil.Questions(2))), 0o644))

	return config.Config{
		Addr:           ":0",
		DBPath:         filepath.Join(dir, "quiz.db"),
		LogLevel:       "ERROR",
		QuestionsDir:   questionsDir,
		SourceList:     "sources.txt",
		Delimiter:      ",",
		SessionSize:    10,
		LedgerKey:      "quiz_progress",
		MaxImportBytes: 1 << 20,
		FetchTimeout:   time.Second,
	}
}

func TestNew_ProgressSurvivesRestart(t *testing.T) {
	ctx := testutil.Context()
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)

	view, err := a.Quiz.Start(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, view.Sources)
	assert.Equal(t, 2, view.Total)

	q := testutil.Questions(2)
	answer := q[0].CorrectOption
	if view.Question.ID == q[1].ID {
		answer = q[1].CorrectOption
	}
	_, err = a.Quiz.Answer(ctx, view.SessionID, answer)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	restarted, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer restarted.Close()

	assert.True(t, restarted.Ledger.IsMastered(view.Question.ID))
	r, err := restarted.Quiz.Remaining(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Remaining)
	assert.NoError(t, restarted.DB.Ping(ctx))
}

func TestNew_RejectsBadQuestionsURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.QuestionsURL = "ftp://example.com/"

	_, err := app.New(testutil.Context(), cfg)
	assert.Error(t, err)
}
