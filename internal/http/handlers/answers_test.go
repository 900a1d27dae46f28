package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/cache"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/http/handlers"
	"github.com/eduraio/qanda-api/internal/http/middlewares"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fake implementation of the handlers.AnswersService interface

type fakeAnswersService struct {
	createFn func(ctx context.Context, req answer.CreateAnswerRequest, p authz.Principal) (answer.Answer, error)
	listFn   func(ctx context.Context, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error)
	getFn    func(ctx context.Context, id string, p authz.Principal) (answer.Answer, error)
	updateFn func(ctx context.Context, id string, req answer.UpdateAnswerRequest, p authz.Principal) (answer.Answer, error)
	deleteFn func(ctx context.Context, id string, p authz.Principal) error
}

func (f *fakeAnswersService) Create(ctx context.Context, req answer.CreateAnswerRequest, p authz.Principal) (answer.Answer, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, p)
	}
	return answer.Answer{}, nil
}

func (f *fakeAnswersService) List(ctx context.Context, fl answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error) {
	if f.listFn != nil {
		return f.listFn(ctx, fl, page, p)
	}
	return pagination.Envelope[answer.Answer]{}, nil
}

func (f *fakeAnswersService) Get(ctx context.Context, id string, p authz.Principal) (answer.Answer, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, p)
	}
	return answer.Answer{}, nil
}

func (f *fakeAnswersService) Update(ctx context.Context, id string, req answer.UpdateAnswerRequest, p authz.Principal) (answer.Answer, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, p)
	}
	return answer.Answer{}, nil
}

func (f *fakeAnswersService) Delete(ctx context.Context, id string, p authz.Principal) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, p)
	}
	return nil
}

func answersRouter(svc handlers.AnswersService, p authz.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middlewares.SetPrincipal(c, p)
		c.Next()
	})

	h := handlers.NewAnswersHandler(svc)
	r.POST("/answers", h.Create)
	r.GET("/answers", h.List)
	r.GET("/answers/:id", h.Get)
	r.PUT("/answers/:id", h.Update)
	r.DELETE("/answers/:id", h.Delete)

	return r
}

func TestAnswersHandlerCreateMapping(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)
	qid := uuid.NewString()
	body := `{"questionId":"` + qid + `","answer":"42"}`

	cases := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"question missing", question.ErrNotFound, http.StatusNotFound, "not_found"},
		{"own question", answer.ErrOwnQuestion, http.StatusBadRequest, "invalid_request"},
		{"already answered", answer.ErrAlreadyAnswered, http.StatusConflict, "already_answered"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAnswersService{
				createFn: func(_ context.Context, _ answer.CreateAnswerRequest, _ authz.Principal) (answer.Answer, error) {
					return answer.Answer{}, tc.svcErr
				},
			}

			r := answersRouter(svc, p)

			req := httptest.NewRequest(http.MethodPost, "/answers", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", resp.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestAnswersHandlerCreateSuccess(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)
	qid := uuid.NewString()

	svc := &fakeAnswersService{
		createFn: func(_ context.Context, req answer.CreateAnswerRequest, caller authz.Principal) (answer.Answer, error) {
			return answer.NewFromCreateRequest(req, caller.ID), nil
		},
	}

	r := answersRouter(svc, p)

	req := httptest.NewRequest(http.MethodPost, "/answers", bytes.NewBufferString(`{"questionId":"`+qid+`","answer":"42"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", w.Code, w.Body.String())
	}

	var got answer.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Answer != "42" || got.QuestionID != qid || got.AnswerByUserID != p.ID {
		t.Fatalf("unexpected answer payload: %+v", got)
	}
}

func TestAnswersHandlerCreateRejectsBadQuestionID(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)

	r := answersRouter(&fakeAnswersService{}, p)

	req := httptest.NewRequest(http.MethodPost, "/answers", bytes.NewBufferString(`{"questionId":"not-a-uuid","answer":"42"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
	}
}

func TestAnswersHandlerGetForbidden(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)
	aid := uuid.NewString()

	svc := &fakeAnswersService{
		getFn: func(_ context.Context, _ string, _ authz.Principal) (answer.Answer, error) {
			return answer.Answer{}, authz.Forbidden("User can get only their own answers")
		},
	}

	r := answersRouter(svc, p)

	req := httptest.NewRequest(http.MethodGet, "/answers/"+aid, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != "User can get only their own answers" {
		t.Fatalf("message = %q, want the ownership reason", resp.Error.Message)
	}
}

func TestAnswerCreateDropsQuestionListCache(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)

	listCalls := 0
	qsvc := &fakeQuestionsService{
		listFn: func(_ context.Context, _ question.ListFilter, _ pagination.Query, _ authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error) {
			listCalls++
			return pagination.Envelope[question.WithAnsweredFlag]{Results: []question.WithAnsweredFlag{}, Limit: 25}, nil
		},
	}
	asvc := &fakeAnswersService{
		createFn: func(_ context.Context, req answer.CreateAnswerRequest, pr authz.Principal) (answer.Answer, error) {
			return answer.NewFromCreateRequest(req, pr.ID), nil
		},
	}

	c := cache.New(time.Minute)

	r := gin.New()
	r.Use(func(gc *gin.Context) {
		middlewares.SetPrincipal(gc, p)
		gc.Next()
	})
	qh := handlers.NewQuestionsHandlerWithCache(qsvc, c)
	ah := handlers.NewAnswersHandlerWithCache(asvc, c)
	r.GET("/questions", qh.List)
	r.POST("/answers", ah.Create)

	listQuestions := func() {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/questions", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("list status = %d, body=%s", w.Code, w.Body.String())
		}
	}

	listQuestions()
	listQuestions()
	if listCalls != 1 {
		t.Fatalf("list calls = %d, want 1 (second served from cache)", listCalls)
	}

	body := `{"questionId":"` + uuid.NewString() + `","answer":"42"}`
	req := httptest.NewRequest(http.MethodPost, "/answers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%s", w.Code, w.Body.String())
	}

	// the answered flag changed, so the cached page must not be reused
	listQuestions()
	if listCalls != 2 {
		t.Fatalf("list calls = %d, want 2 after answering", listCalls)
	}
}
