package questions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/vytor/quizflash/internal/logger"
)

// ErrSourceUnavailable is returned when a source or the source list cannot
// be read. It is distinct from malformed content.
var ErrSourceUnavailable = errors.New("source unavailable")

// maxSourceBytes bounds a single source read. A larger source is
// reported unavailable rather than cut mid-line.
var maxSourceBytes int64 = 8 << 20

// readSource reads all of r, failing when it holds more than maxSourceBytes.
func readSource(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSourceBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", maxSourceBytes)
	}
	return data, nil
}

// Source lists and fetches raw question files.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, name string) (string, error)
}

// ParseSourceList reads a newline-separated list of source names, ignoring
// blank lines.
func ParseSourceList(content string) []string {
	var names []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// DisplayName turns a source file name into a label: the .csv extension is
// dropped and underscores become spaces.
func DisplayName(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, ".csv"), "_", " ")
}

func unavailable(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, name, err)
}

// DirSource serves sources from a filesystem directory.
type DirSource struct {
	fsys     fs.FS
	listName string
}

// NewDirSource returns a DirSource rooted at dir.
func NewDirSource(dir, listName string) *DirSource {
	return NewFSSource(os.DirFS(dir), listName)
}

// NewFSSource returns a DirSource over an arbitrary fs.FS.
func NewFSSource(fsys fs.FS, listName string) *DirSource {
	return &DirSource{fsys: fsys, listName: listName}
}

// List returns the names from the list file. When the list file does not
// exist, the sorted *.csv files of the directory are returned instead.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("source")

	data, err := fs.ReadFile(s.fsys, s.listName)
	if err == nil {
		names := ParseSourceList(string(data))
		log.Debug("read %d names from %s", len(names), s.listName)
		return names, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to read source list: %v", err)
		return nil, unavailable(s.listName, err)
	}

	log.Debug("no %s, falling back to directory listing", s.listName)
	matches, err := fs.Glob(s.fsys, "*.csv")
	if err != nil {
		return nil, unavailable(".", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Fetch reads one source file.
func (s *DirSource) Fetch(ctx context.Context, name string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("source").WithField("source", name)

	if !fs.ValidPath(name) {
		log.Warn("rejecting invalid source path")
		return "", unavailable(name, fs.ErrInvalid)
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		log.Warn("failed to open source: %v", err)
		return "", unavailable(name, err)
	}
	defer f.Close()

	data, err := readSource(f)
	if err != nil {
		log.Warn("failed to read source: %v", err)
		return "", unavailable(name, err)
	}
	return string(data), nil
}

// HTTPSource fetches sources relative to a base URL.
type HTTPSource struct {
	base       *url.URL
	listName   string
	httpClient *http.Client
}

// NewHTTPSource returns an HTTPSource for baseURL.
func NewHTTPSource(baseURL, listName string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		base:       u,
		listName:   listName,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// List fetches and parses the source list.
func (s *HTTPSource) List(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, s.listName)
	if err != nil {
		return nil, err
	}
	return ParseSourceList(body), nil
}

// Fetch downloads one source file.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (string, error) {
	return s.get(ctx, name)
}

func (s *HTTPSource) get(ctx context.Context, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", unavailable(name, fs.ErrInvalid)
	}
	target := s.base.ResolveReference(&url.URL{Path: path.Clean(name)})
	log := logger.FromContext(ctx).WithPrefix("source").WithField("url", target.String())

	log.Debug("fetching")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return "", unavailable(name, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Warn("fetch failed: %v", err)
		return "", unavailable(name, err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("fetch failed: status=%d, body=%s", resp.StatusCode, string(body))
		return "", unavailable(name, fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := readSource(resp.Body)
	if err != nil {
		log.Warn("failed to read body: %v", err)
		return "", unavailable(name, err)
	}
	return string(data), nil
}

var (
	_ Source = (*DirSource)(nil)
	_ Source = (*HTTPSource)(nil)
)
