package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/api"
	"github.com/vytor/quizflash/internal/ledger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/questions"
	"github.com/vytor/quizflash/internal/repository/sqlite"
	"github.com/vytor/quizflash/internal/services"
	"github.com/vytor/quizflash/internal/testutil"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type fixture struct {
	handler   http.Handler
	ledger    *ledger.Ledger
	questions []models.Question
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	qs := testutil.Questions(3)
	fsys := fstest.MapFS{"general.csv": {Data: []byte(testutil.CSV(qs))}}
	catalog := questions.NewCatalog(questions.NewFSSource(fsys, "sources.txt"), questions.NewParser(','))

	repo := sqlite.NewSlotRepository(db)
	l := ledger.New(repo, "")
	l.Load(testutil.Context())

	var mu sync.Mutex
	srv := &api.Server{
		QuizService:     services.NewQuizService(&mu, catalog, l, services.QuizOptions{SessionSize: 10}),
		ProgressService: services.NewProgressService(&mu, l, repo, 4096),
		DB:              pinger{},
		MaxImportBytes:  4096,
	}
	return &fixture{handler: srv.Routes(), ledger: l, questions: qs}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req = req.WithContext(testutil.Context())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) correct(id string) string {
	for _, q := range f.questions {
		if q.ID == id {
			return q.CorrectOption
		}
	}
	return ""
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = f.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := &api.Server{DB: pinger{err: errors.New("closed")}}
	req := httptest.NewRequest(http.MethodGet, "/ready", nil).WithContext(testutil.Context())
	rec = httptest.NewRecorder()
	down.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQuizFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name":"general"`)

	rec = f.do(t, http.MethodPost, "/api/quiz", map[string]any{"sources": []string{"general.csv"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[models.SessionView](t, rec)
	assert.Equal(t, 3, view.Total)

	rec = f.do(t, http.MethodPost, "/api/quiz", map[string]any{"sources": []string{"general.csv"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SESSION_ACTIVE", decode[errorBody](t, rec).Error.Code)

	for i := 0; i < view.Total; i++ {
		rec = f.do(t, http.MethodGet, "/api/quiz", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"previous_outcome":"unattempted"`)
		current := decode[models.SessionView](t, rec)
		require.NotNil(t, current.Question)
		assert.Equal(t, models.Unattempted, current.Question.PreviousOutcome)
		assert.Len(t, current.Question.Options, models.OptionCount)

		rec = f.do(t, http.MethodPost, "/api/quiz/answer", map[string]any{
			"session_id": view.SessionID,
			"answer":     f.correct(current.Question.ID),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = f.do(t, http.MethodPost, "/api/quiz/next", map[string]any{"session_id": view.SessionID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	final := decode[models.SessionView](t, rec)
	assert.Equal(t, models.StateFinished, final.State)
	require.NotNil(t, final.Result)
	assert.Equal(t, 3, final.Result.Score)

	rec = f.do(t, http.MethodGet, "/api/remaining?source=general.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[models.Remaining](t, rec).Remaining)

	rec = f.do(t, http.MethodPost, "/api/quiz/restart", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_QUESTIONS", decode[errorBody](t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/api/progress/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/quiz/restart", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, view.SessionID, decode[models.SessionView](t, rec).SessionID)

	rec = f.do(t, http.MethodDelete, "/api/quiz", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/quiz", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/quiz/answer", map[string]any{"answer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/api/quiz", map[string]any{"nope": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/quiz", map[string]any{"sources": []string{}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/quiz/answer", map[string]any{"session_id": "stale", "answer": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[errorBody](t, rec).Error.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = f.do(t, http.MethodPost, "/api/quiz", map[string]any{"sources": []string{"absent.csv"}})
	assert.Equal(t, http.StatusConflict, rec.Code, "a session is still in progress")
}

func TestProgressExportImport(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context()
	require.NoError(t, f.ledger.Record(ctx, "a", true))
	require.NoError(t, f.ledger.Record(ctx, "b", false))

	rec := f.do(t, http.MethodGet, "/api/progress/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename=quiz_progress_`)
	exported := rec.Body.Bytes()

	require.NoError(t, f.ledger.Reset(ctx))

	// Multipart upload.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "progress.json")
	require.NoError(t, err)
	_, err = part.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/progress/import", &buf).WithContext(ctx)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.LedgerCounts{Mastered: 1, Missed: 1}, decode[models.LedgerCounts](t, rec))

	// Raw body, corrupt.
	req = httptest.NewRequest(http.MethodPost, "/api/progress/import", strings.NewReader("{broken")).WithContext(ctx)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SNAPSHOT", decode[errorBody](t, rec).Error.Code)
	assert.True(t, f.ledger.IsMastered("a"), "ledger intact after a rejected import")

	// Raw body, valid.
	req = httptest.NewRequest(http.MethodPost, "/api/progress/import", strings.NewReader(`["z"]`)).WithContext(ctx)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.ledger.IsMastered("z"))
	assert.False(t, f.ledger.IsMastered("a"))
}

func TestImportOversizeIsInvalidSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context()
	require.NoError(t, f.ledger.Record(ctx, "a", true))

	upload := func(size int) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "progress.json")
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte(" "), size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/progress/import", &buf).WithContext(ctx)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	for name, size := range map[string]int{
		"over the import limit": 4096 + 1,
		"over the body limit":   4096 + 128<<10,
	} {
		t.Run(name, func(t *testing.T) {
			rec := upload(size)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_SNAPSHOT", decode[errorBody](t, rec).Error.Code)
			assert.True(t, f.ledger.IsMastered("a"))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/progress/import", bytes.NewReader(bytes.Repeat([]byte(" "), 4096+128<<10))).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "INVALID_SNAPSHOT", decode[errorBody](t, rec).Error.Code)
}

func TestProgressHistoryRestore(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context()
	require.NoError(t, f.ledger.Record(ctx, "a", true))
	require.NoError(t, f.ledger.Reset(ctx))

	rec := f.do(t, http.MethodGet, "/api/progress/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Versions []models.SlotVersion `json:"versions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Versions, 1)

	rec = f.do(t, http.MethodPost, "/api/progress/history/"+strconv.FormatInt(body.Versions[0].ID, 10)+"/restore", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, f.ledger.IsMastered("a"))

	rec = f.do(t, http.MethodPost, "/api/progress/history/abc/restore", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/progress/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
