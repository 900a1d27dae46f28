package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/domain/user"
	"github.com/eduraio/qanda-api/internal/http/middlewares"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/eduraio/qanda-api/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersService interface {
	Register(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Get(ctx context.Context, id string, p authz.Principal) (user.User, error)
	List(ctx context.Context, f user.ListFilter, page pagination.Query) (pagination.Envelope[user.User], error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest, p authz.Principal) (user.User, error)
	Delete(ctx context.Context, id string, p authz.Principal) error
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.svc.Register(cctx, req)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	page, ok := bindPageQuery(ctx)
	if !ok {
		return
	}

	f := user.ListFilter{}
	if v := ctx.Query("name"); v != "" {
		f.Name = &v
	}
	if v := ctx.Query("email"); v != "" {
		f.Email = &v
	}
	if v := ctx.Query("role"); v != "" {
		f.Role = &v
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	envlp, err := h.svc.List(cctx, f, page)

	if err != nil {
		respondServiceError(ctx, err, "User not found", "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, envlp)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "user id must be a valid UUID", nil)
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.svc.Get(cctx, id, p)

	if err != nil {
		respondServiceError(ctx, err, "User not found", "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "user id must be a valid UUID", nil)
		return
	}

	var req user.UpdateUserRequest

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

	u, err := h.svc.Update(cctx, id, req, p)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		respondServiceError(ctx, err, "User not found", "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "user id must be a valid UUID", nil)
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
		respondServiceError(ctx, err, "User not found", "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}
