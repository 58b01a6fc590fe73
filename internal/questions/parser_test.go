package questions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/questions"
)

func quietCtx() context.Context {
	return logger.NewContext(context.Background(), logger.Discard())
}

func TestSplitFields_QuotedDelimiter(t *testing.T) {
	fields := questions.SplitFields(`"Capital of France, in Europe?", Paris ,"Lyon, FR",Nice,Lille,Paris`, ',')

	require.Len(t, fields, 6)
	assert.Equal(t, "Capital of France, in Europe?", fields[0])
	assert.Equal(t, "Paris", fields[1])
	assert.Equal(t, "Lyon, FR", fields[2])
	assert.Equal(t, "Nice", fields[3])
	assert.Equal(t, "Lille", fields[4])
	assert.Equal(t, "Paris", fields[5])
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		delim    rune
		expected []string
	}{
		{
			name:     "plain",
			line:     "a,b,c",
			delim:    ',',
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty fields",
			line:     "a,,c,",
			delim:    ',',
			expected: []string{"a", "", "c", ""},
		},
		{
			name:     "doubled quote is literal",
			line:     `"say ""hi""",x`,
			delim:    ',',
			expected: []string{`say "hi"`, "x"},
		},
		{
			name:     "semicolon delimiter keeps commas",
			line:     "1,5;2;3",
			delim:    ';',
			expected: []string{"1,5", "2", "3"},
		},
		{
			name:     "unterminated quote swallows the rest",
			line:     `a,"b,c`,
			delim:    ',',
			expected: []string{"a", "b,c"},
		},
		{
			name:     "multibyte text",
			line:     "¿Qué?,sí",
			delim:    ',',
			expected: []string{"¿Qué?", "sí"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, questions.SplitFields(tt.line, tt.delim))
		})
	}
}

func TestParse_WellFormedAndShortLines(t *testing.T) {
	content := "What is 2+2?,3,4,5,6,4\n" +
		"\n" +
		"Too short,a,b,c,a\n" +
		`"Pick one, please",x,y,z,w,z` + "\n"

	qs, dropped := questions.NewParser(',').Parse(quietCtx(), "math.csv", content)

	require.Len(t, qs, 2)
	assert.Equal(t, "What is 2+2?", qs[0].Text)
	assert.Equal(t, [4]string{"3", "4", "5", "6"}, qs[0].Options)
	assert.Equal(t, "4", qs[0].CorrectOption)
	assert.Equal(t, "math.csv", qs[0].Source)
	assert.Equal(t, 1, qs[0].Line)

	assert.Equal(t, "Pick one, please", qs[1].Text)
	assert.Equal(t, 4, qs[1].Line)

	require.Len(t, dropped, 1)
	assert.Equal(t, 3, dropped[0].Line)
	assert.Equal(t, 5, dropped[0].Fields)
	assert.Contains(t, dropped[0].Error(), "math.csv:3")
}

func TestParse_InvariantViolationsAreDropped(t *testing.T) {
	content := "Too many,a,b,c,d,a,extra\n" +
		"Dup options,a,a,c,d,a\n" +
		"Wrong answer,a,b,c,d,e\n" +
		",a,b,c,d,a\n" +
		"Empty option,a,,c,d,a\n"

	qs, dropped := questions.NewParser(0).Parse(quietCtx(), "bad.csv", content)

	assert.Empty(t, qs)
	require.Len(t, dropped, 5)
	assert.Contains(t, dropped[0].Reason, "expected 6 fields")
	assert.Contains(t, dropped[1].Reason, "duplicate option")
	assert.Contains(t, dropped[2].Reason, "not one of the options")
	assert.Contains(t, dropped[3].Reason, "empty question text")
	assert.Contains(t, dropped[4].Reason, "empty option")
}

func TestParse_TrailingDelimiters(t *testing.T) {
	content := "Q?,A,B,C,D,A,\n" +
		"Q2?,A,B,C,D,B,,\n" +
		"Q3?,A,B,C,D,C,x,\n"

	qs, dropped := questions.NewParser(',').Parse(quietCtx(), "a.csv", content)

	require.Len(t, qs, 2)
	assert.Equal(t, "A", qs[0].CorrectOption)
	assert.Equal(t, "B", qs[1].CorrectOption)
	assert.Equal(t, questions.Fingerprint("Q?", "A"), qs[0].ID)

	require.Len(t, dropped, 1)
	assert.Equal(t, 3, dropped[0].Line)
	assert.Equal(t, 7, dropped[0].Fields)
}

func TestParse_CRLFAndBOM(t *testing.T) {
	content := "\ufeffQ1,a,b,c,d,a\r\nQ2,a,b,c,d,b\r\n"

	qs, dropped := questions.NewParser(',').Parse(quietCtx(), "win.csv", content)

	assert.Empty(t, dropped)
	require.Len(t, qs, 2)
	assert.Equal(t, "Q1", qs[0].Text)
	assert.Equal(t, "b", qs[1].CorrectOption)
}

func TestParse_IdentityIsContentFingerprint(t *testing.T) {
	p := questions.NewParser(',')
	a, _ := p.Parse(quietCtx(), "a.csv", "Q1,a,b,c,d,a\nQ2,a,b,c,d,b\n")
	b, _ := p.Parse(quietCtx(), "b.csv", "Q2,d,c,b,a,b\n\n\nQ1,b,a,d,c,a\n")

	require.Len(t, a, 2)
	require.Len(t, b, 2)
	assert.Equal(t, a[0].ID, b[1].ID, "reordering and option order must not change identity")
	assert.Equal(t, a[1].ID, b[0].ID)
	assert.NotEqual(t, a[0].ID, a[1].ID)
	assert.Equal(t, questions.Fingerprint("Q1", "a"), a[0].ID)
	assert.Len(t, a[0].ID, 32)
}

func TestFingerprint_SeparatesFields(t *testing.T) {
	assert.NotEqual(t, questions.Fingerprint("ab", "c"), questions.Fingerprint("a", "bc"))
}
