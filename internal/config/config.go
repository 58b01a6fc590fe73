package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/vytor/quizflash/internal/logger"
)

type Config struct {
	Addr           string
	DBPath         string
	LogLevel       string
	QuestionsDir   string
	QuestionsURL   string
	SourceList     string
	Delimiter      string
	SessionSize    int
	LedgerKey      string
	MaxImportBytes int64
	FetchTimeout   time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:           envOr("ADDR", ":8080"),
		DBPath:         envOr("DB_PATH", "file:quizflash.db"),
		LogLevel:       envOr("LOG_LEVEL", "INFO"),
		QuestionsDir:   envOr("QUESTIONS_DIR", "questions"),
		QuestionsURL:   os.Getenv("QUESTIONS_URL"),
		SourceList:     envOr("SOURCE_LIST", "sources.txt"),
		Delimiter:      envOr("DELIMITER", ","),
		SessionSize:    envIntOr("SESSION_SIZE", 10),
		LedgerKey:      envOr("LEDGER_KEY", "quiz_progress"),
		MaxImportBytes: int64(envIntOr("MAX_IMPORT_BYTES", 1<<20)),
		FetchTimeout:   envDurationOr("FETCH_TIMEOUT", 15*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.QuestionsURL != "" {
		u, err := url.Parse(c.QuestionsURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("QUESTIONS_URL %q must be an absolute http(s) URL", c.QuestionsURL))
		}
	} else if c.QuestionsDir == "" {
		errs = append(errs, errors.New("QUESTIONS_DIR cannot be empty when QUESTIONS_URL is unset"))
	}
	if c.SourceList == "" {
		errs = append(errs, errors.New("SOURCE_LIST cannot be empty"))
	}
	if r, size := utf8.DecodeRuneInString(c.Delimiter); size == 0 || size != len(c.Delimiter) || r == utf8.RuneError || r == '"' || r == '\n' || r == '\r' {
		errs = append(errs, fmt.Errorf("DELIMITER %q must be a single character other than a quote or newline", c.Delimiter))
	}
	if c.SessionSize <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SIZE must be positive, got %d", c.SessionSize))
	}
	if c.LedgerKey == "" {
		errs = append(errs, errors.New("LEDGER_KEY cannot be empty"))
	}
	if c.MaxImportBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMPORT_BYTES must be positive, got %d", c.MaxImportBytes))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}
	return errors.Join(errs...)
}

// DelimiterRune returns the field delimiter. Call Validate first.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
