package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/http/handlers"
	"github.com/eduraio/qanda-api/internal/http/middlewares"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fake implementation of the handlers.QuestionsService interface

type fakeQuestionsService struct {
	createFn      func(ctx context.Context, req question.CreateQuestionRequest, p authz.Principal) (question.Question, error)
	listFn        func(ctx context.Context, f question.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error)
	getFn         func(ctx context.Context, id string, p authz.Principal) (question.WithAnsweredFlag, error)
	updateFn      func(ctx context.Context, id string, req question.UpdateQuestionRequest, p authz.Principal) (question.Question, error)
	deleteFn      func(ctx context.Context, id string, p authz.Principal) error
	listAnswersFn func(ctx context.Context, questionID string, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error)
}

func (f *fakeQuestionsService) Create(ctx context.Context, req question.CreateQuestionRequest, p authz.Principal) (question.Question, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, p)
	}
	return question.Question{}, nil
}

func (f *fakeQuestionsService) List(ctx context.Context, fl question.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error) {
	if f.listFn != nil {
		return f.listFn(ctx, fl, page, p)
	}
	return pagination.Envelope[question.WithAnsweredFlag]{}, nil
}

func (f *fakeQuestionsService) Get(ctx context.Context, id string, p authz.Principal) (question.WithAnsweredFlag, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, p)
	}
	return question.WithAnsweredFlag{}, nil
}

func (f *fakeQuestionsService) Update(ctx context.Context, id string, req question.UpdateQuestionRequest, p authz.Principal) (question.Question, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, p)
	}
	return question.Question{}, nil
}

func (f *fakeQuestionsService) Delete(ctx context.Context, id string, p authz.Principal) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, p)
	}
	return nil
}

func (f *fakeQuestionsService) ListAnswers(ctx context.Context, questionID string, fl answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error) {
	if f.listAnswersFn != nil {
		return f.listAnswersFn(ctx, questionID, fl, page, p)
	}
	return pagination.Envelope[answer.Answer]{}, nil
}

func testPrincipal(role string) authz.Principal {
	return authz.Principal{ID: uuid.NewString(), Email: "tester@example.com", Role: role}
}

func questionsRouter(svc handlers.QuestionsService, p authz.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middlewares.SetPrincipal(c, p)
		c.Next()
	})

	h := handlers.NewQuestionsHandler(svc)
	r.POST("/questions", h.Create)
	r.GET("/questions", h.List)
	r.GET("/questions/:id", h.Get)
	r.PUT("/questions/:id", h.Update)
	r.DELETE("/questions/:id", h.Delete)
	r.GET("/questions/:id/answers", h.ListAnswers)

	return r
}

func TestQuestionsHandlerStatusMapping(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)
	qid := uuid.NewString()

	cases := []struct {
		name       string
		method     string
		path       string
		body       string
		svc        *fakeQuestionsService
		wantStatus int
		wantCode   string
	}{
		{
			name:   "create forbidden for participants",
			method: http.MethodPost,
			path:   "/questions",
			body:   `{"question":"What is the answer to everything?"}`,
			svc: &fakeQuestionsService{
				createFn: func(_ context.Context, _ question.CreateQuestionRequest, _ authz.Principal) (question.Question, error) {
					return question.Question{}, authz.Forbidden("Organizer role required")
				},
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:   "create validation failure",
			method: http.MethodPost,
			path:   "/questions",
			body:   `{"question":"hm"}`,
			svc:    &fakeQuestionsService{},

			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:   "get missing question",
			method: http.MethodGet,
			path:   "/questions/" + qid,
			svc: &fakeQuestionsService{
				getFn: func(_ context.Context, _ string, _ authz.Principal) (question.WithAnsweredFlag, error) {
					return question.WithAnsweredFlag{}, question.ErrNotFound
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "get malformed id",
			method:     http.MethodGet,
			path:       "/questions/not-a-uuid",
			svc:        &fakeQuestionsService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:   "update not the creator",
			method: http.MethodPut,
			path:   "/questions/" + qid,
			body:   `{"question":"What is the meaning of life?"}`,
			svc: &fakeQuestionsService{
				updateFn: func(_ context.Context, _ string, _ question.UpdateQuestionRequest, _ authz.Principal) (question.Question, error) {
					return question.Question{}, authz.Forbidden("User can update only their own questions")
				},
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:   "list answers for missing question",
			method: http.MethodGet,
			path:   "/questions/" + qid + "/answers",
			svc: &fakeQuestionsService{
				listAnswersFn: func(_ context.Context, _ string, _ answer.ListFilter, _ pagination.Query, _ authz.Principal) (pagination.Envelope[answer.Answer], error) {
					return pagination.Envelope[answer.Answer]{}, question.ErrNotFound
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:   "list rejects oversized limit",
			method: http.MethodGet,
			path:   "/questions?limit=101",
			svc: &fakeQuestionsService{
				listFn: func(_ context.Context, _ question.ListFilter, _ pagination.Query, _ authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error) {
					return pagination.Envelope[question.WithAnsweredFlag]{}, &pagination.ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
				},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := questionsRouter(tc.svc, p)

			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal error body: %v body=%s", err, w.Body.String())
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", resp.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestQuestionsHandlerForbiddenReasonSurfaces(t *testing.T) {
	p := testPrincipal(user.RoleOrganizer)
	qid := uuid.NewString()

	svc := &fakeQuestionsService{
		deleteFn: func(_ context.Context, _ string, _ authz.Principal) error {
			return authz.Forbidden("User can delete only their own questions")
		},
	}

	r := questionsRouter(svc, p)

	req := httptest.NewRequest(http.MethodDelete, "/questions/"+qid, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != "User can delete only their own questions" {
		t.Fatalf("message = %q, want the ownership reason", resp.Error.Message)
	}
}

func TestQuestionsHandlerListSetsETag(t *testing.T) {
	p := testPrincipal(user.RoleParticipant)

	envlp := pagination.Envelope[question.WithAnsweredFlag]{
		Results: []question.WithAnsweredFlag{},
		Total:   0,
		Limit:   25,
		Offset:  0,
	}

	svc := &fakeQuestionsService{
		listFn: func(_ context.Context, _ question.ListFilter, _ pagination.Query, _ authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error) {
			return envlp, nil
		},
	}

	r := questionsRouter(svc, p)

	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}

	// replay with the tag
	req = httptest.NewRequest(http.MethodGet, "/questions", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
}
