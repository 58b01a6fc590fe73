package questions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

// FieldCount is the number of fields a question line resolves to:
// question text, four options, correct answer.
const FieldCount = 2 + models.OptionCount

const (
	DefaultDelimiter = ','
	quoteChar        = '"'
)

// LineError describes a source line that was dropped.
type LineError struct {
	Source string
	Line   int // 1-based
	Fields int
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
}

// Parser turns delimited question text into Question records.
type Parser struct {
	Delimiter rune
}

// NewParser returns a parser for the given delimiter; zero means comma.
func NewParser(delim rune) Parser {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	return Parser{Delimiter: delim}
}

// Parse reads every non-blank line of content. Lines that do not resolve to a
// valid question are skipped, logged at WARN and returned as LineErrors.
func (p Parser) Parse(ctx context.Context, source, content string) ([]models.Question, []LineError) {
	log := logger.FromContext(ctx).WithPrefix("parser").WithField("source", source)

	delim := p.Delimiter
	if delim == 0 {
		delim = DefaultDelimiter
	}

	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var out []models.Question
	var bad []LineError
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, lerr := p.parseLine(source, i+1, line, delim)
		if lerr != nil {
			log.Warn("dropping malformed line %d: %s", lerr.Line, lerr.Reason)
			bad = append(bad, *lerr)
			continue
		}
		out = append(out, q)
	}

	log.Debug("parsed %d questions, dropped %d lines", len(out), len(bad))
	return out, bad
}

func (p Parser) parseLine(source string, lineNo int, line string, delim rune) (models.Question, *LineError) {
	fields := trimTrailingEmpty(SplitFields(line, delim))
	fail := func(reason string) (models.Question, *LineError) {
		return models.Question{}, &LineError{Source: source, Line: lineNo, Fields: len(fields), Reason: reason}
	}

	if len(fields) != FieldCount {
		return fail(fmt.Sprintf("expected %d fields, got %d", FieldCount, len(fields)))
	}

	q := models.Question{
		Source:        source,
		Line:          lineNo,
		Text:          fields[0],
		CorrectOption: fields[FieldCount-1],
	}
	copy(q.Options[:], fields[1:1+models.OptionCount])

	if q.Text == "" {
		return fail("empty question text")
	}
	seen := make(map[string]struct{}, models.OptionCount)
	for _, o := range q.Options {
		if o == "" {
			return fail("empty option")
		}
		if _, dup := seen[o]; dup {
			return fail(fmt.Sprintf("duplicate option %q", o))
		}
		seen[o] = struct{}{}
	}
	if !q.HasOption(q.CorrectOption) {
		return fail(fmt.Sprintf("correct answer %q is not one of the options", q.CorrectOption))
	}

	q.ID = Fingerprint(q.Text, q.CorrectOption)
	return q, nil
}

// trimTrailingEmpty drops empty fields past FieldCount, as left by trailing
// delimiters in spreadsheet exports.
func trimTrailingEmpty(fields []string) []string {
	for len(fields) > FieldCount && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// SplitFields splits one line on delim. A quote toggles quoted mode, in which
// the delimiter is literal; a doubled quote inside quoted mode is a literal
// quote. Every field is trimmed.
func SplitFields(line string, delim rune) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		switch {
		case r == quoteChar:
			if inQuotes && strings.HasPrefix(line[i+size:], string(quoteChar)) {
				cur.WriteRune(quoteChar)
				i += 2 * size
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
		i += size
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// Fingerprint derives a question id from its text and correct answer. It is
// stable across reordering and across sources, and changes when either part
// is edited.
func Fingerprint(text, correct string) string {
	sum := sha256.Sum256([]byte(text + "\x1f" + correct))
	return hex.EncodeToString(sum[:16])
}
