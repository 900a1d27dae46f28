package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/cache"
	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/http/middlewares"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/eduraio/qanda-api/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnswersService interface {
	Create(ctx context.Context, req answer.CreateAnswerRequest, p authz.Principal) (answer.Answer, error)
	List(ctx context.Context, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error)
	Get(ctx context.Context, id string, p authz.Principal) (answer.Answer, error)
	Update(ctx context.Context, id string, req answer.UpdateAnswerRequest, p authz.Principal) (answer.Answer, error)
	Delete(ctx context.Context, id string, p authz.Principal) error
}

type AnswersHandler struct {
	svc AnswersService

	// questionListCache is the question handler's list cache. Creating or
	// deleting an answer flips the caller's answered flag, so cached
	// question pages go stale and must be dropped.
	questionListCache *cache.Cache
}

func NewAnswersHandler(svc AnswersService) *AnswersHandler {
	return &AnswersHandler{svc: svc}
}

func NewAnswersHandlerWithCache(svc AnswersService, c *cache.Cache) *AnswersHandler {
	return &AnswersHandler{svc: svc, questionListCache: c}
}

func (h *AnswersHandler) Create(ctx *gin.Context) {
	var req answer.CreateAnswerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.svc.Create(cctx, req, p)

	if err != nil {
		switch {
		case errors.Is(err, question.ErrNotFound):
			RespondNotFound(ctx, "Question not found")
		case errors.Is(err, answer.ErrOwnQuestion):
			RespondBadRequest(ctx, "You cannot answer your own question.", nil)
		case errors.Is(err, answer.ErrAlreadyAnswered):
			RespondConflict(ctx, "already_answered", "You have already answered this question.")
		default:
			respondServiceError(ctx, err, "Question not found", "Could not create answer")
		}
		return
	}

	h.invalidateQuestionListCache()

	ctx.JSON(http.StatusCreated, a)
}

func (h *AnswersHandler) invalidateQuestionListCache() {
	if h.questionListCache != nil {
		h.questionListCache.Clear()
	}
}

func (h *AnswersHandler) List(ctx *gin.Context) {
	page, ok := bindPageQuery(ctx)
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	f := answer.ListFilter{}
	if v := ctx.Query("id"); v != "" {
		f.ID = &v
	}
	if v := ctx.Query("answer"); v != "" {
		f.Answer = &v
	}
	if v := ctx.Query("answerByUserId"); v != "" {
		f.AnswerByUserID = &v
	}
	if v := ctx.Query("questionId"); v != "" {
		f.QuestionID = &v
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	envlp, err := h.svc.List(cctx, f, page, p)

	if err != nil {
		respondServiceError(ctx, err, "Answer not found", "Could not list answers")
		return
	}

	ctx.JSON(http.StatusOK, envlp)
}

func (h *AnswersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "answer id must be a valid UUID", nil)
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.svc.Get(cctx, id, p)

	if err != nil {
		respondServiceError(ctx, err, "Answer not found", "Could not fetch answer")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AnswersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "answer id must be a valid UUID", nil)
		return
	}

	var req answer.UpdateAnswerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.svc.Update(cctx, id, req, p)

	if err != nil {
		respondServiceError(ctx, err, "Answer not found", "Could not update answer")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AnswersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "answer id must be a valid UUID", nil)
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.svc.Delete(cctx, id, p); err != nil {
		respondServiceError(ctx, err, "Answer not found", "Could not delete answer")
		return
	}

	h.invalidateQuestionListCache()

	ctx.Status(http.StatusNoContent)
}
