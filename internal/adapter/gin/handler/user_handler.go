package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"store-api/internal/usecase/user"
	pkgerrors "store-api/pkg/errors"
)

// UserIDQuery is the query parameter naming the target user.
const UserIDQuery = "user_uuid"

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// UserIDResponse is returned by create, update and delete.
type UserIDResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// CreateUser handles POST /users/create
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request", zap.Error(err))
		writeError(c, pkgerrors.NewValidationError("", "malformed request body"))
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserIDResponse{UserID: resp.ID})
}

// GetUser handles GET /users/read?user_uuid=
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateUser handles PATCH /users/update?user_uuid=
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request", zap.String("id", id.String()), zap.Error(err))
		writeError(c, pkgerrors.NewValidationError("", "malformed request body"))
		return
	}
	req.ID = id

	resp, err := h.uc.UpdateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserIDResponse{UserID: resp.ID})
}

// DeleteUser handles DELETE /users/delete?user_uuid=
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserIDResponse{UserID: resp.ID})
}

// userID parses the user_uuid query parameter, writing a 422 on failure.
func (h *UserHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query(UserIDQuery)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.log.Warn("invalid user id", zap.String("id", raw), zap.Error(err))
		writeError(c, pkgerrors.NewValidationError(UserIDQuery, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError converts an application error to its status and detail body.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	code, detail := pkgerrors.HTTPStatus(err)
	c.JSON(code, ErrorResponse{Detail: detail})
}
