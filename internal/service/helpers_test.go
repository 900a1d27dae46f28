package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/repo/memory"
)

// env wires the services against the map-backed repositories so every
// gate and uniqueness rule is exercised without a database.
type env struct {
	users     *Users
	questions *Questions
	answers   *Answers

	usersRepo     *memory.UsersRepo
	questionsRepo *memory.QuestionsRepo
	answersRepo   *memory.AnswersRepo
}

func newEnv() *env {
	usersRepo := memory.NewUsersRepo()
	answersRepo := memory.NewAnswersRepo()
	questionsRepo := memory.NewQuestionsRepo(answersRepo)

	return &env{
		users:         NewUsers(usersRepo),
		questions:     NewQuestions(questionsRepo, answersRepo),
		answers:       NewAnswers(answersRepo, questionsRepo),
		usersRepo:     usersRepo,
		questionsRepo: questionsRepo,
		answersRepo:   answersRepo,
	}
}

func (e *env) registerUser(t *testing.T, email, name, role string) (user.User, authz.Principal) {
	t.Helper()

	u, err := e.users.Register(context.Background(), user.CreateUserRequest{
		Email:    email,
		Password: "s3cret-pass",
		Name:     name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}

	return u, authz.Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (e *env) postQuestion(t *testing.T, text string, p authz.Principal) question.Question {
	t.Helper()

	q, err := e.questions.Create(context.Background(), question.CreateQuestionRequest{Question: text}, p)
	if err != nil {
		t.Fatalf("post question: %v", err)
	}

	return q
}

func assertForbidden(t *testing.T, err error, wantReason string) {
	t.Helper()

	var forbidden *authz.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if forbidden.Reason != wantReason {
		t.Fatalf("reason = %q, want %q", forbidden.Reason, wantReason)
	}
}
