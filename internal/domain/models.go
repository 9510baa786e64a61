package domain

import (
	"strings"
	"time"
)

// Label names one of the four choices of a question.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the choice labels in display order.
var Labels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel normalizes user input ("b", " B ") into a Label.
func ParseLabel(raw string) (Label, bool) {
	l := Label(strings.ToUpper(strings.TrimSpace(raw)))
	switch l {
	case LabelA, LabelB, LabelC, LabelD:
		return l, true
	}
	return "", false
}

// Index returns the position of the label in Labels, or -1.
func (l Label) Index() int {
	for i, candidate := range Labels {
		if candidate == l {
			return i
		}
	}
	return -1
}

// Question is a four-choice question. It is immutable once stored.
type Question struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
	Correct Label     `json:"correct"`
}

// Validate checks that the correct label is one of A-D.
func (q Question) Validate() error {
	if q.Correct.Index() < 0 {
		return ErrInvalidLabel
	}
	return nil
}

// Public strips the answer so the question can be shown to a player.
func (q Question) Public() PublicQuestion {
	choices := make([]Choice, 0, len(q.Options))
	for i, text := range q.Options {
		choices = append(choices, Choice{Label: Labels[i], Text: text})
	}
	return PublicQuestion{ID: q.ID, Text: q.Text, Choices: choices}
}

// Choice is one labeled option as displayed to a player.
type Choice struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// PublicQuestion is a question without its correct label.
type PublicQuestion struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// SessionState is the in-progress quiz of one session key.
// Invariant: 0 <= Score <= Index <= Total == len(Order).
type SessionState struct {
	Order []int64 `json:"order"`
	Index int     `json:"index"`
	Score int     `json:"score"`
	Total int     `json:"total"`

	// Recorded is set once the attempt is stored, so a retried completion
	// only clears the session instead of storing it again.
	Recorded *ScoreRecord `json:"recorded,omitempty"`
}

// Finished reports whether every question has been answered.
func (s SessionState) Finished() bool {
	return s.Index >= s.Total
}

// User is the identity handed over by the auth layer.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ScoreRecord is the immutable outcome of one completed quiz.
type ScoreRecord struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Percentage returns score/total in [0,1]; zero totals yield 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total)
}

// Progress is the question currently shown to a player.
type Progress struct {
	Question PublicQuestion `json:"question"`
	Current  int            `json:"current"` // 1-based
	Total    int            `json:"total"`
}

// Completion is the final result of a quiz.
type Completion struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Submission is an answer posted by a player.
type Submission struct {
	QuestionID    int64
	SelectedLabel string
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	QuestionID int64 `json:"questionId"`
	Correct    bool  `json:"correct"`
	Score      int   `json:"score"`
	Index      int   `json:"index"`
}

// LeaderboardEntry is one ranked attempt.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  float64   `json:"percentage"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Attempt is one row of a user's history.
type Attempt struct {
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Leaderboard combines the global ranking with the caller's recent attempts.
type Leaderboard struct {
	Top       []LeaderboardEntry `json:"top"`
	History   []Attempt          `json:"history"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
