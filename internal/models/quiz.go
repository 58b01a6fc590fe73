package models

import "time"

// SessionState is the coarse state of a quiz session.
type SessionState string

const (
	StateNotStarted     SessionState = "not_started"
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateAnswered       SessionState = "answered"
	StateFinished       SessionState = "finished"
)

// InProgress reports whether the state is one of the in-progress sub-states.
func (s SessionState) InProgress() bool {
	return s == StateAwaitingAnswer || s == StateAnswered
}

// QuestionView is a question as presented to the player: the options are in
// display order and the correct answer is withheld until answered.
type QuestionView struct {
	ID              string   `json:"id"`
	Source          string   `json:"source"`
	Text            string   `json:"text"`
	Options         []string `json:"options"`
	PreviousOutcome Outcome  `json:"previous_outcome"`
}

// AnswerFeedback is returned after an answer is submitted.
type AnswerFeedback struct {
	QuestionID    string `json:"question_id"`
	Selected      string `json:"selected"`
	CorrectOption string `json:"correct_option"`
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
}

// QuizResult is the final tally of a finished session.
type QuizResult struct {
	Score   int           `json:"score"`
	Wrong   int           `json:"wrong"`
	Total   int           `json:"total"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// SessionView is a snapshot of the live session for the presentation layer.
type SessionView struct {
	SessionID    string          `json:"session_id"`
	State        SessionState    `json:"state"`
	Sources      []string        `json:"sources"`
	Index        int             `json:"index"`
	Total        int             `json:"total"`
	Score        int             `json:"score"`
	StartedAt    time.Time       `json:"started_at"`
	ElapsedMs    int64           `json:"elapsed_ms"`
	Question     *QuestionView   `json:"question,omitempty"`
	LastAnswer   *AnswerFeedback `json:"last_answer,omitempty"`
	Result       *QuizResult     `json:"result,omitempty"`
	FailedSource []string        `json:"failed_sources,omitempty"`
}
