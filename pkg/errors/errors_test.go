package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantDetail string
	}{
		{
			name:       "validation",
			err:        NewValidationError("", "at least one field must be provided"),
			wantCode:   http.StatusUnprocessableEntity,
			wantDetail: "validation failed: at least one field must be provided",
		},
		{
			name:       "not found",
			err:        NewNotFoundError("user", "user with id 42 not found"),
			wantCode:   http.StatusNotFound,
			wantDetail: "user with id 42 not found",
		},
		{
			name:       "conflict",
			err:        NewAlreadyExistsError("user", ""),
			wantCode:   http.StatusConflict,
			wantDetail: "user already exists",
		},
		{
			name:       "unauthorized",
			err:        NewUnauthorizedError("incorrect username or password"),
			wantCode:   http.StatusUnauthorized,
			wantDetail: "incorrect username or password",
		},
		{
			name:       "internal hides wrapped error",
			err:        NewInternalError("failed to create user", stderrors.New("pq: connection refused")),
			wantCode:   http.StatusInternalServerError,
			wantDetail: "failed to create user",
		},
		{
			name:       "wrapped typed error",
			err:        fmt.Errorf("handler: %w", NewNotFoundError("user", "")),
			wantCode:   http.StatusNotFound,
			wantDetail: "user not found",
		},
		{
			name:       "unknown error",
			err:        stderrors.New("boom"),
			wantCode:   http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, detail := HTTPStatus(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestGRPCStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{NewValidationError("email", "invalid"), codes.InvalidArgument},
		{NewNotFoundError("user", ""), codes.NotFound},
		{NewAlreadyExistsError("user", ""), codes.AlreadyExists},
		{NewUnauthorizedError("nope"), codes.Unauthenticated},
		{NewInternalError("failed", stderrors.New("driver detail")), codes.Internal},
	}

	for _, tt := range tests {
		st, ok := status.FromError(tt.err)
		assert.True(t, ok)
		assert.Equal(t, tt.code, st.Code())
		assert.NotContains(t, st.Message(), "driver detail")
	}
}
