package models

import (
	"fmt"
	"time"
)

// Outcome is the last recorded result for a question.
type Outcome int

const (
	Unattempted Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unattempted"
	}
}

// MarshalText encodes the outcome by name, so views carry
// "unattempted", "correct" or "incorrect".
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unattempted":
		*o = Unattempted
	case "correct":
		*o = Correct
	case "incorrect":
		*o = Incorrect
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// LedgerCounts summarises the mastery ledger.
type LedgerCounts struct {
	Mastered int `json:"mastered"`
	Missed   int `json:"missed"`
}

// Remaining is the remaining-questions figure for a source selection.
type Remaining struct {
	Sources   []string `json:"sources"`
	Total     int      `json:"total"`
	Mastered  int      `json:"mastered"`
	Remaining int      `json:"remaining"`
	Failed    []string `json:"failed_sources,omitempty"`
}

// ProgressFile is an exported ledger snapshot ready for download.
type ProgressFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// SlotVersion is a previous value of a key-value slot.
type SlotVersion struct {
	ID         int64     `json:"id"`
	Key        string    `json:"key"`
	Value      []byte    `json:"-"`
	Size       int       `json:"size"`
	ReplacedAt time.Time `json:"replaced_at"`
}
