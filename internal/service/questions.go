package service

import (
	"context"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/pagination"
)

// QuestionsStore is the record-access contract the questions service
// consumes. AnswerAuthors is the include-answers projection backing the
// answered-by-me flag.
type QuestionsStore interface {
	Create(ctx context.Context, q question.Question) (question.Question, error)
	GetByID(ctx context.Context, id string) (question.Question, error)
	List(ctx context.Context, f question.ListFilter, page pagination.Query) ([]question.Question, error)
	Count(ctx context.Context, f question.ListFilter) (int, error)
	AnswerAuthors(ctx context.Context, questionIDs []string) (map[string][]string, error)
	Update(ctx context.Context, id string, req question.UpdateQuestionRequest) (question.Question, error)
	Delete(ctx context.Context, id string) error
}

// QuestionAnswersStore is the slice of the answers contract needed to
// list a question's answers.
type QuestionAnswersStore interface {
	List(ctx context.Context, f answer.ListFilter, page pagination.Query) ([]answer.Answer, error)
	Count(ctx context.Context, f answer.ListFilter) (int, error)
}

type Questions struct {
	store   QuestionsStore
	answers QuestionAnswersStore
}

func NewQuestions(store QuestionsStore, answers QuestionAnswersStore) *Questions {
	return &Questions{store: store, answers: answers}
}

// Create is organizer-only; there is nothing to own yet, so the role gate
// is the whole check.
func (s *Questions) Create(ctx context.Context, req question.CreateQuestionRequest, p authz.Principal) (question.Question, error) {
	if err := authz.RequireRole(p, authz.OpQuestionCreate); err != nil {
		return question.Question{}, err
	}

	return s.store.Create(ctx, question.NewFromCreateRequest(req, p.ID))
}

// List returns every matching question regardless of the caller's role,
// each carrying the answered-by-me flag computed against the caller.
func (s *Questions) List(ctx context.Context, f question.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error) {
	if err := page.Normalize(pagination.DefaultSort, "updated_at"); err != nil {
		return pagination.Envelope[question.WithAnsweredFlag]{}, err
	}

	questions, err := s.store.List(ctx, f, page)
	if err != nil {
		return pagination.Envelope[question.WithAnsweredFlag]{}, err
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}

	authors, err := s.store.AnswerAuthors(ctx, ids)
	if err != nil {
		return pagination.Envelope[question.WithAnsweredFlag]{}, err
	}

	flagged := make([]question.WithAnsweredFlag, 0, len(questions))
	for _, q := range questions {
		flagged = append(flagged, question.WithAnsweredFlag{
			Question:     q,
			AnsweredByMe: question.AnsweredBy(authors[q.ID], p.ID),
		})
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return pagination.Envelope[question.WithAnsweredFlag]{}, err
	}

	return pagination.WrapResults(page, flagged, total), nil
}

func (s *Questions) Get(ctx context.Context, id string, p authz.Principal) (question.WithAnsweredFlag, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return question.WithAnsweredFlag{}, err
	}

	authors, err := s.store.AnswerAuthors(ctx, []string{q.ID})
	if err != nil {
		return question.WithAnsweredFlag{}, err
	}

	return question.WithAnsweredFlag{
		Question:     q,
		AnsweredByMe: question.AnsweredBy(authors[q.ID], p.ID),
	}, nil
}

// Update requires the organizer role AND creator identity; both gates run
// only after the record is known to exist.
func (s *Questions) Update(ctx context.Context, id string, req question.UpdateQuestionRequest, p authz.Principal) (question.Question, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return question.Question{}, err
	}

	if err := authz.RequireRole(p, authz.OpQuestionUpdate); err != nil {
		return question.Question{}, err
	}

	if err := authz.RequireOwner(q.CreatedByUserID, p.ID, "User can update only their own questions"); err != nil {
		return question.Question{}, err
	}

	return s.store.Update(ctx, id, req)
}

func (s *Questions) Delete(ctx context.Context, id string, p authz.Principal) error {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authz.RequireRole(p, authz.OpQuestionDelete); err != nil {
		return err
	}

	if err := authz.RequireOwner(q.CreatedByUserID, p.ID, "User can delete only their own questions"); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// ListAnswers is the organizer-only view of one question's answers,
// paginated and scoped to that question no matter what the filter says.
func (s *Questions) ListAnswers(ctx context.Context, questionID string, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error) {
	if err := page.Normalize(pagination.DefaultSort, "updated_at"); err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	if _, err := s.store.GetByID(ctx, questionID); err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	if err := authz.RequireRole(p, authz.OpQuestionListAnswers); err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	f.QuestionID = &questionID

	answers, err := s.answers.List(ctx, f, page)
	if err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	total, err := s.answers.Count(ctx, f)
	if err != nil {
		return pagination.Envelope[answer.Answer]{}, err
	}

	return pagination.WrapResults(page, answers, total), nil
}
