package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"store-api/internal/usecase/auth"
	"store-api/internal/usecase/user"
	pkgerrors "store-api/pkg/errors"
	"store-api/pkg/metrics"
)

// AuthUsecase is the login operation exposed over gRPC.
type AuthUsecase interface {
	Login(ctx context.Context, in auth.LoginRequest) (*auth.TokenResponse, error)
}

// userService implements UserServiceServer on top of the usecases.
type userService struct {
	users   user.Usecase
	auth    AuthUsecase
	metrics *metrics.Metrics
	log     *zap.Logger
}

var _ UserServiceServer = (*userService)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(users user.Usecase, authUC AuthUsecase, m *metrics.Metrics, log *zap.Logger) UserServiceServer {
	return &userService{users: users, auth: authUC, metrics: m, log: log}
}

// Login takes {"username", "password"} and returns {"access_token", "token_type"}.
func (s *userService) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req auth.LoginRequest
	fields := in.GetFields()
	req.Username = fields["username"].GetStringValue()
	req.Password = fields["password"].GetStringValue()
	if req.Username == "" || req.Password == "" {
		return nil, pkgerrors.NewValidationError("", "username and password are required")
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		var unauthorized *pkgerrors.UnauthorizedError
		if errors.As(err, &unauthorized) {
			s.metrics.RecordLogin(metrics.LoginRejected)
		} else {
			s.metrics.RecordLogin(metrics.LoginError)
		}
		return nil, err
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	return toStruct(resp)
}

// CreateUser takes the same fields as the HTTP create body.
func (s *userService) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req user.CreateUserRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}

	resp, err := s.users.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// GetUser takes the user id as a string value.
func (s *userService) GetUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseUserID(in.GetValue())
	if err != nil {
		return nil, err
	}

	resp, err := s.users.GetUser(ctx, user.GetUserRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// UpdateUser takes "user_uuid" plus the fields to change.
func (s *userService) UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseUserID(in.GetFields()["user_uuid"].GetStringValue())
	if err != nil {
		return nil, err
	}

	var req user.UpdateUserRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	req.ID = id

	resp, err := s.users.UpdateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// DeleteUser takes the user id as a string value.
func (s *userService) DeleteUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseUserID(in.GetValue())
	if err != nil {
		return nil, err
	}

	resp, err := s.users.DeleteUser(ctx, user.DeleteUserRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.NewValidationError("user_uuid", "must be a valid UUID")
	}
	return id, nil
}

// fromStruct decodes a Struct into a request DTO through its JSON form.
func fromStruct(in *structpb.Struct, out any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return pkgerrors.NewValidationError("", "malformed request")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.NewValidationError("", "malformed request")
	}
	return nil
}

// toStruct encodes a response DTO using its JSON field names.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode response", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode response", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode response", err)
	}
	return st, nil
}
