package memory

import (
	"context"
	"sort"
	"sync"

	"quizboard-service/internal/domain"
)

// QuestionStore is an in-memory question bank (useful for tests/demos or when no database is configured).
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[int64]domain.Question
	nextID    int64
}

// NewQuestionStore stores questions as given; zero IDs are assigned sequentially.
func NewQuestionStore(questions ...domain.Question) *QuestionStore {
	s := &QuestionStore{questions: make(map[int64]domain.Question, len(questions))}
	for _, q := range questions {
		s.insertLocked(q)
	}
	return s
}

func (s *QuestionStore) ListIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedIDsLocked(), nil
}

func (s *QuestionStore) Get(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *QuestionStore) SeedIfEmpty(_ context.Context, defaults []domain.Question) (bool, error) {
	for _, q := range defaults {
		if err := q.Validate(); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) > 0 {
		return false, nil
	}
	for _, q := range defaults {
		q.ID = 0
		s.insertLocked(q)
	}
	return len(defaults) > 0, nil
}

// LoadQuestions returns every question ordered by ID.
func (s *QuestionStore) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.sortedIDsLocked()
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.questions[id])
	}
	return out, nil
}

func (s *QuestionStore) insertLocked(q domain.Question) {
	if q.ID == 0 {
		s.nextID++
		q.ID = s.nextID
	} else if q.ID > s.nextID {
		s.nextID = q.ID
	}
	s.questions[q.ID] = q
}

func (s *QuestionStore) sortedIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
