package questions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/questions"
)

func TestParseSourceList(t *testing.T) {
	names := questions.ParseSourceList("history.csv\r\n\n  science_101.csv \n\n")
	assert.Equal(t, []string{"history.csv", "science_101.csv"}, names)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "world history", questions.DisplayName("world_history.csv"))
	assert.Equal(t, "notes.txt", questions.DisplayName("notes.txt"))
}

func TestDirSource_ListFromListFile(t *testing.T) {
	fsys := fstest.MapFS{
		"sources.txt": {Data: []byte("b.csv\n\na.csv\n")},
		"a.csv":       {Data: []byte("Q,a,b,c,d,a\n")},
		"b.csv":       {Data: []byte("Q,a,b,c,d,b\n")},
	}
	src := questions.NewFSSource(fsys, "sources.txt")

	names, err := src.List(quietCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.csv", "a.csv"}, names)
}

func TestDirSource_ListFallsBackToCSVFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"zoo.csv":    {Data: []byte("")},
		"art.csv":    {Data: []byte("")},
		"readme.txt": {Data: []byte("")},
	}
	src := questions.NewFSSource(fsys, "sources.txt")

	names, err := src.List(quietCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"art.csv", "zoo.csv"}, names)
}

func TestDirSource_Fetch(t *testing.T) {
	fsys := fstest.MapFS{"a.csv": {Data: []byte("Q,a,b,c,d,a\n")}}
	src := questions.NewFSSource(fsys, "sources.txt")

	content, err := src.Fetch(quietCtx(), "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "Q,a,b,c,d,a\n", content)

	_, err = src.Fetch(quietCtx(), "missing.csv")
	assert.ErrorIs(t, err, questions.ErrSourceUnavailable)

	_, err = src.Fetch(quietCtx(), "../etc/passwd")
	assert.ErrorIs(t, err, questions.ErrSourceUnavailable)
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quizzes/sources.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("geo.csv\n\n"))
	})
	mux.HandleFunc("/quizzes/geo.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Capital of Peru?,Lima,Quito,Bogota,La Paz,Lima\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src, err := questions.NewHTTPSource(srv.URL+"/quizzes", "sources.txt", time.Second)
	require.NoError(t, err)

	names, err := src.List(quietCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"geo.csv"}, names)

	content, err := src.Fetch(quietCtx(), "geo.csv")
	require.NoError(t, err)
	assert.Contains(t, content, "Capital of Peru?")

	_, err = src.Fetch(quietCtx(), "nope.csv")
	assert.ErrorIs(t, err, questions.ErrSourceUnavailable)
}

func TestNewHTTPSource_RejectsBadScheme(t *testing.T) {
	_, err := questions.NewHTTPSource("ftp://example.com/q", "sources.txt", 0)
	assert.Error(t, err)
}

func TestSource_OversizeIsUnavailable(t *testing.T) {
	const line = "Q,a,b,c,d,a\n"
	questions.SetMaxSourceBytes(t, int64(len(line)))

	fsys := fstest.MapFS{
		"fits.csv":  {Data: []byte(line)},
		"large.csv": {Data: []byte(line + "Q2,a,b,c,d,b\n")},
	}
	dir := questions.NewFSSource(fsys, "sources.txt")

	content, err := dir.Fetch(quietCtx(), "fits.csv")
	require.NoError(t, err)
	assert.Equal(t, line, content)

	_, err = dir.Fetch(quietCtx(), "large.csv")
	assert.ErrorIs(t, err, questions.ErrSourceUnavailable)

	srv := httptest.NewServer(http.FileServer(http.FS(fsys)))
	defer srv.Close()
	remote, err := questions.NewHTTPSource(srv.URL, "sources.txt", time.Second)
	require.NoError(t, err)

	content, err = remote.Fetch(quietCtx(), "fits.csv")
	require.NoError(t, err)
	assert.Equal(t, line, content)

	_, err = remote.Fetch(quietCtx(), "large.csv")
	assert.ErrorIs(t, err, questions.ErrSourceUnavailable)
}
