package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"store-api/internal/adapter/gin/middleware"
	"store-api/internal/usecase/auth"
	pkgerrors "store-api/pkg/errors"
	"store-api/pkg/metrics"
)

// AuthUsecase is the login operation used by AuthHandler.
type AuthUsecase interface {
	Login(ctx context.Context, in auth.LoginRequest) (*auth.TokenResponse, error)
}

// AuthHandler serves the login endpoints.
type AuthHandler struct {
	uc      AuthUsecase
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc AuthUsecase, m *metrics.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, metrics: m, log: log}
}

// MeResponse describes the caller identified by the bearer token.
type MeResponse struct {
	Subject   string `json:"sub"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"exp"`
}

// Login handles POST /login/token with form fields username and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		h.log.Warn("invalid login request", zap.Error(err))
		writeError(c, pkgerrors.NewValidationError("", "username and password are required"))
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), req)
	if err != nil {
		var unauthorized *pkgerrors.UnauthorizedError
		if errors.As(err, &unauthorized) {
			h.metrics.RecordLogin(metrics.LoginRejected)
			c.Header("WWW-Authenticate", "Bearer")
		} else {
			h.metrics.RecordLogin(metrics.LoginError)
		}
		writeError(c, err)
		return
	}

	h.metrics.RecordLogin(metrics.LoginSuccess)
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /login/me. It must run behind middleware.BearerAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		writeError(c, pkgerrors.NewUnauthorizedError("not authenticated"))
		return
	}

	resp := MeResponse{Subject: claims.Subject, UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, resp)
}
