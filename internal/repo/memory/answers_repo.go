package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/pagination"
)

type AnswersRepo struct {
	mu    sync.RWMutex
	items map[string]answer.Answer
}

func NewAnswersRepo() *AnswersRepo {
	return &AnswersRepo{
		items: make(map[string]answer.Answer),
	}
}

func (r *AnswersRepo) Create(_ context.Context, a answer.Answer) (answer.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// same uniqueness rule the postgres constraint enforces
	for _, existing := range r.items {
		if existing.QuestionID == a.QuestionID && existing.AnswerByUserID == a.AnswerByUserID {
			return answer.Answer{}, answer.ErrAlreadyAnswered
		}
	}

	r.items[a.ID] = a

	return a, nil
}

func (r *AnswersRepo) GetByID(_ context.Context, id string) (answer.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return answer.Answer{}, answer.ErrNotFound
	}

	return a, nil
}

func (r *AnswersRepo) GetByQuestionAndUser(_ context.Context, questionID, userID string) (answer.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.QuestionID == questionID && a.AnswerByUserID == userID {
			return a, nil
		}
	}

	return answer.Answer{}, answer.ErrNotFound
}

func (r *AnswersRepo) matches(a answer.Answer, f answer.ListFilter) bool {
	if f.ID != nil && a.ID != *f.ID {
		return false
	}
	if f.Answer != nil && !strings.Contains(strings.ToLower(a.Answer), strings.ToLower(*f.Answer)) {
		return false
	}
	if f.AnswerByUserID != nil && a.AnswerByUserID != *f.AnswerByUserID {
		return false
	}
	if f.QuestionID != nil && a.QuestionID != *f.QuestionID {
		return false
	}
	return true
}

func (r *AnswersRepo) List(_ context.Context, f answer.ListFilter, page pagination.Query) ([]answer.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]answer.Answer, 0, len(r.items))

	for _, a := range r.items {
		if r.matches(a, f) {
			matched = append(matched, a)
		}
	}

	sortByCreatedAt(matched, page.Order, func(a answer.Answer) (time.Time, string) {
		return a.CreatedAt, a.ID
	})

	return paginate(matched, page), nil
}

func (r *AnswersRepo) Count(_ context.Context, f answer.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, a := range r.items {
		if r.matches(a, f) {
			total++
		}
	}

	return total, nil
}

func (r *AnswersRepo) Update(_ context.Context, id string, req answer.UpdateAnswerRequest) (answer.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return answer.Answer{}, answer.ErrNotFound
	}

	a.Answer = req.Answer
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a

	return a, nil
}

func (r *AnswersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return answer.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
