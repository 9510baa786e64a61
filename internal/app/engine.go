package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"quizboard-service/internal/domain"
)

// RecordHook is called after a score record has been persisted.
type RecordHook func(ctx context.Context, rec domain.ScoreRecord)

// QuizEngine is the per-session quiz state machine:
// NotStarted -> InProgress -> Completed. Completed state is dropped from the
// session store, so the next access starts a fresh attempt.
type QuizEngine struct {
	questions QuestionBank
	sessions  SessionStateStore
	scores    ScoreRecorder

	shuffle Shuffler
	now     func() time.Time
	log     logrus.FieldLogger
	hooks   []RecordHook
	locks   *keyLocks
}

// EngineOption customizes a QuizEngine.
type EngineOption func(*QuizEngine)

// WithShuffler replaces the random ordering, mostly for tests.
func WithShuffler(s Shuffler) EngineOption {
	return func(e *QuizEngine) { e.shuffle = s }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *QuizEngine) { e.now = now }
}

func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *QuizEngine) { e.log = log }
}

// OnRecord registers a hook that runs after each completed attempt is stored.
func OnRecord(hook RecordHook) EngineOption {
	return func(e *QuizEngine) { e.hooks = append(e.hooks, hook) }
}

func NewQuizEngine(questions QuestionBank, sessions SessionStateStore, scores ScoreRecorder, opts ...EngineOption) *QuizEngine {
	e := &QuizEngine{
		questions: questions,
		sessions:  sessions,
		scores:    scores,
		shuffle:   defaultShuffler(),
		now:       time.Now,
		log:       logrus.StandardLogger(),
		locks:     newKeyLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step is the outcome of one quiz request: either the next question or the final result.
type Step struct {
	Progress   *domain.Progress
	Answer     *domain.AnswerResult
	Completion *domain.Completion
}

// Start creates the session state for key unless one is already in progress.
func (e *QuizEngine) Start(ctx context.Context, key string) (domain.SessionState, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	state, _, err := e.startLocked(ctx, key)
	return state, err
}

// SubmitAnswer scores one answer and advances the index by one. The index
// moves even when questionID is unknown or is not the question at the
// current index; unknown questions score as incorrect.
func (e *QuizEngine) SubmitAnswer(ctx context.Context, key string, sub domain.Submission) (domain.AnswerResult, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	return e.submitLocked(ctx, key, sub)
}

// CheckCompletion records the attempt and clears the session once every
// question was answered. done is false while questions remain.
func (e *QuizEngine) CheckCompletion(ctx context.Context, user domain.User, key string) (domain.Completion, bool, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	return e.completeLocked(ctx, user, key)
}

// CurrentQuestion returns the question at the current index with 1-based progress counters.
func (e *QuizEngine) CurrentQuestion(ctx context.Context, key string) (domain.Progress, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	return e.currentLocked(ctx, key)
}

// Advance runs the full request flow: start if needed, apply the optional
// submission, then either complete the quiz or return the next question.
func (e *QuizEngine) Advance(ctx context.Context, user domain.User, key string, sub *domain.Submission) (Step, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	// Missing state is not an error here: the player simply gets a new quiz.
	if _, started, err := e.startLocked(ctx, key); err != nil {
		return Step{}, err
	} else if started && sub != nil {
		e.log.WithFields(logrus.Fields{"session": key, "user": user.ID}).
			Info("answer received without an active quiz; started a new one")
	}

	var step Step
	if sub != nil {
		res, err := e.submitLocked(ctx, key, *sub)
		switch {
		case errors.Is(err, domain.ErrNoActiveQuiz):
			// Every question is already answered; fall through to completion.
		case err != nil:
			return Step{}, err
		default:
			step.Answer = &res
		}
	}

	completion, done, err := e.completeLocked(ctx, user, key)
	if err != nil {
		return Step{}, err
	}
	if done {
		step.Completion = &completion
		return step, nil
	}

	progress, err := e.currentLocked(ctx, key)
	if err != nil {
		return Step{}, err
	}
	step.Progress = &progress
	return step, nil
}

// Abandon drops any in-progress state for key, e.g. on logout.
func (e *QuizEngine) Abandon(ctx context.Context, key string) error {
	unlock := e.locks.lock(key)
	defer unlock()

	if err := e.sessions.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (e *QuizEngine) startLocked(ctx context.Context, key string) (domain.SessionState, bool, error) {
	state, ok, err := e.sessions.Get(ctx, key)
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("load session: %w", err)
	}
	if ok {
		return state, false, nil
	}

	ids, err := e.questions.ListIDs(ctx)
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("list questions: %w", err)
	}
	order := uniqueIDs(ids)
	e.shuffle(order)

	state = domain.SessionState{Order: order, Total: len(order)}
	if err := e.sessions.Set(ctx, key, state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("save session: %w", err)
	}
	e.log.WithFields(logrus.Fields{"session": key, "total": state.Total}).Debug("quiz started")
	return state, true, nil
}

func (e *QuizEngine) submitLocked(ctx context.Context, key string, sub domain.Submission) (domain.AnswerResult, error) {
	state, err := e.activeLocked(ctx, key)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	correct, err := e.isCorrect(ctx, state, sub)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if correct {
		state.Score++
	}
	state.Index++

	if err := e.sessions.Set(ctx, key, state); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("save session: %w", err)
	}
	return domain.AnswerResult{
		QuestionID: sub.QuestionID,
		Correct:    correct,
		Score:      state.Score,
		Index:      state.Index,
	}, nil
}

func (e *QuizEngine) completeLocked(ctx context.Context, user domain.User, key string) (domain.Completion, bool, error) {
	state, ok, err := e.sessions.Get(ctx, key)
	if err != nil {
		return domain.Completion{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.Completion{}, false, domain.ErrNoActiveQuiz
	}
	if !state.Finished() {
		return domain.Completion{}, false, nil
	}

	fields := logrus.Fields{"session": key, "user": user.ID, "score": state.Score, "total": state.Total}
	var rec domain.ScoreRecord
	if state.Recorded != nil {
		// Stored by an earlier attempt whose cleanup failed.
		rec = *state.Recorded
	} else {
		rec, err = e.scores.Append(ctx, domain.ScoreRecord{
			UserID:     user.ID,
			Score:      state.Score,
			Total:      state.Total,
			RecordedAt: e.now().UTC(),
		})
		if err != nil {
			e.log.WithFields(fields).WithError(err).Warn("score not recorded; keeping session for retry")
			return domain.Completion{}, false, fmt.Errorf("%w: %w", domain.ErrScoreNotRecorded, err)
		}
		state.Recorded = &rec
		if err := e.sessions.Set(ctx, key, state); err != nil {
			e.log.WithFields(fields).WithError(err).Warn("could not mark session as recorded")
		}
	}
	if err := e.sessions.Delete(ctx, key); err != nil {
		return domain.Completion{}, false, fmt.Errorf("clear session: %w", err)
	}
	e.log.WithFields(fields).Info("quiz completed")

	for _, hook := range e.hooks {
		hook(ctx, rec)
	}
	return domain.Completion{
		Score:      rec.Score,
		Total:      rec.Total,
		Percentage: domain.Percentage(rec.Score, rec.Total),
	}, true, nil
}

func (e *QuizEngine) currentLocked(ctx context.Context, key string) (domain.Progress, error) {
	state, err := e.activeLocked(ctx, key)
	if err != nil {
		return domain.Progress{}, err
	}
	q, err := e.questions.Get(ctx, state.Order[state.Index])
	if err != nil {
		return domain.Progress{}, fmt.Errorf("question %d: %w", state.Order[state.Index], err)
	}
	return domain.Progress{
		Question: q.Public(),
		Current:  state.Index + 1,
		Total:    state.Total,
	}, nil
}

// activeLocked loads state that still has questions left.
func (e *QuizEngine) activeLocked(ctx context.Context, key string) (domain.SessionState, error) {
	state, ok, err := e.sessions.Get(ctx, key)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || state.Finished() {
		return domain.SessionState{}, domain.ErrNoActiveQuiz
	}
	return state, nil
}

// isCorrect scores against the named question, which must belong to the
// session's order; ids outside it never score.
func (e *QuizEngine) isCorrect(ctx context.Context, state domain.SessionState, sub domain.Submission) (bool, error) {
	selected, ok := domain.ParseLabel(sub.SelectedLabel)
	if !ok || !slices.Contains(state.Order, sub.QuestionID) {
		return false, nil
	}
	q, err := e.questions.Get(ctx, sub.QuestionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup question %d: %w", sub.QuestionID, err)
	}
	return q.Correct == selected, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
