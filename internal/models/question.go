package models

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is one multiple-choice question parsed from a source file.
// It is immutable once parsed.
type Question struct {
	ID            string              `json:"id"`
	Source        string              `json:"source"`
	Line          int                 `json:"line"`
	Text          string              `json:"text"`
	Options       [OptionCount]string `json:"options"`
	CorrectOption string              `json:"correct_option"`
}

// HasOption reports whether s is one of the question's options.
func (q Question) HasOption(s string) bool {
	for _, o := range q.Options {
		if o == s {
			return true
		}
	}
	return false
}

// Source describes one question source available for selection.
type Source struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}
