package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/pagination"
)

type QuestionsRepo struct {
	mu    sync.RWMutex
	items map[string]question.Question

	// answers backs the include-answers projection; when set, AnswerAuthors
	// reads through to it.
	answers *AnswersRepo
}

func NewQuestionsRepo(answers *AnswersRepo) *QuestionsRepo {
	return &QuestionsRepo{
		items:   make(map[string]question.Question),
		answers: answers,
	}
}

func (r *QuestionsRepo) Create(_ context.Context, q question.Question) (question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[q.ID] = q

	return q, nil
}

func (r *QuestionsRepo) GetByID(_ context.Context, id string) (question.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.items[id]
	if !ok {
		return question.Question{}, question.ErrNotFound
	}

	return q, nil
}

func (r *QuestionsRepo) matches(q question.Question, f question.ListFilter) bool {
	if f.ID != nil && q.ID != *f.ID {
		return false
	}
	if f.Question != nil && !strings.Contains(strings.ToLower(q.Question), strings.ToLower(*f.Question)) {
		return false
	}
	if f.CreatedByUserID != nil && q.CreatedByUserID != *f.CreatedByUserID {
		return false
	}
	return true
}

func (r *QuestionsRepo) List(_ context.Context, f question.ListFilter, page pagination.Query) ([]question.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]question.Question, 0, len(r.items))

	for _, q := range r.items {
		if r.matches(q, f) {
			matched = append(matched, q)
		}
	}

	sortByCreatedAt(matched, page.Order, func(q question.Question) (time.Time, string) {
		return q.CreatedAt, q.ID
	})

	return paginate(matched, page), nil
}

func (r *QuestionsRepo) Count(_ context.Context, f question.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, q := range r.items {
		if r.matches(q, f) {
			total++
		}
	}

	return total, nil
}

func (r *QuestionsRepo) AnswerAuthors(_ context.Context, questionIDs []string) (map[string][]string, error) {
	authors := make(map[string][]string, len(questionIDs))

	if r.answers == nil {
		return authors, nil
	}

	wanted := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}

	// read the backing map directly so the projection covers every answer,
	// like the unpaged postgres aggregate
	r.answers.mu.RLock()
	defer r.answers.mu.RUnlock()

	for _, a := range r.answers.items {
		if wanted[a.QuestionID] {
			authors[a.QuestionID] = append(authors[a.QuestionID], a.AnswerByUserID)
		}
	}

	return authors, nil
}

func (r *QuestionsRepo) Update(_ context.Context, id string, req question.UpdateQuestionRequest) (question.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.items[id]
	if !ok {
		return question.Question{}, question.ErrNotFound
	}

	q.Question = req.Question
	q.UpdatedAt = time.Now().UTC()
	r.items[id] = q

	return q, nil
}

func (r *QuestionsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return question.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
