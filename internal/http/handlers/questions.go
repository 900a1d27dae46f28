package handlers

import (
	"context"
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

type QuestionsService interface {
	Create(ctx context.Context, req question.CreateQuestionRequest, p authz.Principal) (question.Question, error)
	List(ctx context.Context, f question.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[question.WithAnsweredFlag], error)
	Get(ctx context.Context, id string, p authz.Principal) (question.WithAnsweredFlag, error)
	Update(ctx context.Context, id string, req question.UpdateQuestionRequest, p authz.Principal) (question.Question, error)
	Delete(ctx context.Context, id string, p authz.Principal) error
	ListAnswers(ctx context.Context, questionID string, f answer.ListFilter, page pagination.Query, p authz.Principal) (pagination.Envelope[answer.Answer], error)
}

type QuestionsHandler struct {
	svc QuestionsService

	// listCache holds recent list pages; the answered flag depends on the
	// viewer, so keys include the caller id.
	listCache *cache.Cache
}

func NewQuestionsHandler(svc QuestionsService) *QuestionsHandler {
	return &QuestionsHandler{svc: svc}
}

func NewQuestionsHandlerWithCache(svc QuestionsService, c *cache.Cache) *QuestionsHandler {
	return &QuestionsHandler{svc: svc, listCache: c}
}

func (h *QuestionsHandler) Create(ctx *gin.Context) {
	var req question.CreateQuestionRequest

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

	q, err := h.svc.Create(cctx, req, p)

	if err != nil {
		respondServiceError(ctx, err, "Question not found", "Could not create question")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusCreated, q)
}

func (h *QuestionsHandler) List(ctx *gin.Context) {
	page, ok := bindPageQuery(ctx)
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	f := question.ListFilter{}
	if v := ctx.Query("id"); v != "" {
		f.ID = &v
	}
	if v := ctx.Query("question"); v != "" {
		f.Question = &v
	}
	if v := ctx.Query("createdByUserId"); v != "" {
		f.CreatedByUserID = &v
	}

	cacheKey := p.ID + "|" + ctx.Request.URL.RawQuery

	if h.listCache != nil {
		if cached, ok := h.listCache.Get(cacheKey); ok {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	envlp, err := h.svc.List(cctx, f, page, p)

	if err != nil {
		respondServiceError(ctx, err, "Question not found", "Could not list questions")
		return
	}

	if h.listCache != nil {
		h.listCache.Set(cacheKey, envlp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, envlp)
}

func (h *QuestionsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "question id must be a valid UUID", nil)
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	q, err := h.svc.Get(cctx, id, p)

	if err != nil {
		respondServiceError(ctx, err, "Question not found", "Could not fetch question")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, q)
}

func (h *QuestionsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "question id must be a valid UUID", nil)
		return
	}

	var req question.UpdateQuestionRequest

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

	q, err := h.svc.Update(cctx, id, req, p)

	if err != nil {
		respondServiceError(ctx, err, "Question not found", "Could not update question")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusOK, q)
}

func (h *QuestionsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "question id must be a valid UUID", nil)
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
		respondServiceError(ctx, err, "Question not found", "Could not delete question")
		return
	}

	h.invalidateListCache()

	ctx.Status(http.StatusNoContent)
}

func (h *QuestionsHandler) ListAnswers(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "question id must be a valid UUID", nil)
		return
	}

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
	if v := ctx.Query("answer"); v != "" {
		f.Answer = &v
	}
	if v := ctx.Query("answerByUserId"); v != "" {
		f.AnswerByUserID = &v
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	envlp, err := h.svc.ListAnswers(cctx, id, f, page, p)

	if err != nil {
		respondServiceError(ctx, err, "Question not found", "Could not list answers")
		return
	}

	ctx.JSON(http.StatusOK, envlp)
}

func (h *QuestionsHandler) invalidateListCache() {
	if h.listCache != nil {
		h.listCache.Clear()
	}
}
