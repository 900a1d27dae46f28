package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/service"
	"github.com/gin-gonic/gin"
)

type CredentialVerifier interface {
	Login(ctx context.Context, req service.LoginRequest) (service.LoginResult, error)
}

type AuthHandler struct {
	auth CredentialVerifier
}

func NewAuthHandler(auth CredentialVerifier) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the credential lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	result, err := h.auth.Login(cctx, req)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnAuthorized(ctx, "invalid_credentials", service.ErrInvalidCredentials.Error())
			return
		}

		RespondInternal(ctx, "Could not verify credentials")
		return
	}

	ctx.JSON(http.StatusOK, result)
}
