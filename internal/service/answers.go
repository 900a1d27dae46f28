package service

import (
	"context"
	"errors"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/pagination"
)

// AnswersStore is the record-access contract the answers service consumes.
type AnswersStore interface {
	Create(ctx context.Context, a answer.Answer) (answer.Answer, error)
	GetByID(ctx context.Context, id string) (answer.Answer, error)
	GetByQuestionAndUser(ctx context.Context, questionID, userID string) (answer.Answer, error)
	List(ctx context.Context, f answer.ListFilter, page pagination.Query) ([]answer.Answer, error)
	Count(ctx context.Context, f answer.ListFilter) (int, error)
	Update(ctx context.Context, id string, req answer.UpdateAnswerRequest) (answer.Answer, error)
	Delete(ctx context.Context, id string) error
}

// AnswerQuestionsStore is the slice of the questions contract answer
// creation needs.
type AnswerQuestionsStore interface {
	GetByID(ctx context.Context, id string) (question.Question, error)
}

type Answers struct {
	store     AnswersStore
	questions AnswerQuestionsStore
}

func NewAnswers(store AnswersStore, questions AnswerQuestionsStore) *Answers {
	return &Answers{store: store, questions: questions}
}

// Create submits an answer to an existing question. The asker cannot
// answer themselves, and each user gets one answer per question; the
// pre-check catches the common duplicate, the storage constraint settles
// races.
func (s *Answers) Create(ctx context.Context, req answer.CreateAnswerRequest, p authz.Principal) (answer.Answer, error) {
	q, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		return answer.Answer{}, err
	}

	if q.CreatedByUserID == p.ID {
		return answer.Answer{}, answer.ErrOwnQuestion
	}

	_, err = s.store.GetByQuestionAndUser(ctx, req.QuestionID, p.ID)

	if err == nil {
		return answer.Answer{}, answer.ErrAlreadyAnswered
	}

	if !errors.Is(err, answer.ErrNotFound) {
		return answer.Answer{}, err
	}

	return s.store.Create(ctx, answer.NewFromCreateRequest(req, p.ID))
}

// List force-scopes participants to their own answers; organizers see
// every match.
func (s *Answers) List(ctx context.Context, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error) {
	if err := page.Normalize(pagination.DefaultSort, "updated_at"); err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	if p.IsParticipant() {
		// The scope conjoins with a caller-supplied filter: asking for
		// someone else's answers yields nothing, not the caller's own.
		if f.AnswerByUserID != nil && *f.AnswerByUserID != p.ID {
			return pagination.WrapResults[answer.Answer](page, nil, 0), nil
		}
		callerID := p.ID
		f.AnswerByUserID = &callerID
	}

	answers, err := s.store.List(ctx, f, page)
	if err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	return pagination.WrapResults(page, answers, total), nil
}

func (s *Answers) Get(ctx context.Context, id string, p authz.Principal) (answer.Answer, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return answer.Answer{}, err
	}

	if p.IsParticipant() {
		if err := authz.RequireOwner(a.AnswerByUserID, p.ID, "User can get only their own answers"); err != nil {
			return answer.Answer{}, err
		}
	}

	return a, nil
}

// Update is author-only, independent of role.
func (s *Answers) Update(ctx context.Context, id string, req answer.UpdateAnswerRequest, p authz.Principal) (answer.Answer, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return answer.Answer{}, err
	}

	if err := authz.RequireOwner(a.AnswerByUserID, p.ID, "User can update only their own answers"); err != nil {
		return answer.Answer{}, err
	}

	return s.store.Update(ctx, id, req)
}

// Delete is author-only, independent of role.
func (s *Answers) Delete(ctx context.Context, id string, p authz.Principal) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authz.RequireOwner(a.AnswerByUserID, p.ID, "User can delete only their own answers"); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}
