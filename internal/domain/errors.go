package domain

import "errors"

var (
	// ErrNotAuthenticated is returned when a request carries no usable identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoActiveQuiz is returned when a quiz operation runs before the session was started.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrQuestionNotFound indicates a question ID is unknown to the question bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrScoreNotRecorded wraps persistence failures on completion; the session is kept so the caller can retry.
	ErrScoreNotRecorded = errors.New("score not recorded")
	// ErrInvalidLabel indicates a question carries a correct label outside A-D.
	ErrInvalidLabel = errors.New("invalid choice label")
)
