package memory

import (
	"context"
	"testing"

	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/google/uuid"
)

func TestAnswerAuthorsCoversEveryAnswer(t *testing.T) {
	ctx := context.Background()

	answers := NewAnswersRepo()
	questions := NewQuestionsRepo(answers)

	q, err := questions.Create(ctx, question.NewFromCreateRequest(question.CreateQuestionRequest{
		Question: "What is the answer to everything?",
	}, uuid.NewString()))
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	other, err := questions.Create(ctx, question.NewFromCreateRequest(question.CreateQuestionRequest{
		Question: "Why is the sky blue?",
	}, uuid.NewString()))
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	// well past a single list page, one answer per distinct user
	n := pagination.MaxLimit + 50
	want := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		a, err := answers.Create(ctx, answer.NewFromCreateRequest(answer.CreateAnswerRequest{
			QuestionID: q.ID,
			Answer:     "42",
		}, uuid.NewString()))
		if err != nil {
			t.Fatalf("create answer %d: %v", i, err)
		}
		want[a.AnswerByUserID] = true
	}

	if _, err := answers.Create(ctx, answer.NewFromCreateRequest(answer.CreateAnswerRequest{
		QuestionID: other.ID,
		Answer:     "scattering",
	}, uuid.NewString())); err != nil {
		t.Fatalf("create answer on other question: %v", err)
	}

	authors, err := questions.AnswerAuthors(ctx, []string{q.ID})
	if err != nil {
		t.Fatalf("AnswerAuthors: %v", err)
	}

	got := authors[q.ID]
	if len(got) != n {
		t.Fatalf("authors = %d, want %d", len(got), n)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected author %s", id)
		}
	}
	if len(authors[other.ID]) != 0 {
		t.Fatalf("other question leaked into the projection: %v", authors[other.ID])
	}
}
