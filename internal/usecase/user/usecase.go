package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "store-api/internal/domain/user"
	pkgerrors "store-api/pkg/errors"
)

// Repository defines the interface for user data access operations.
// Implementations return domain.ErrNotFound and domain.ErrEmailTaken.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credentials, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Hasher derives the stored hash from a plaintext password.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Service implements the business logic for user management operations.
type Service struct {
	repo     Repository
	hasher   Hasher
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

var _ Usecase = (*Service)(nil)

// New creates a new user Service.
func New(r Repository, h Hasher, log *zap.Logger) *Service {
	return &Service{
		repo:     r,
		hasher:   h,
		log:      log,
		validate: NewValidator(),
		now:      time.Now,
	}
}

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// "max" counts runes; bcrypt limits the encoded length.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "maxbytes":
			messages = append(messages, fmt.Sprintf("%s must be at most %s bytes", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// CreateUser validates the request, hashes the password and stores the user.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	s.log.Info("creating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error("failed to hash password", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	id, err := s.repo.Create(ctx, &domain.User{
		ID:               uuid.New(),
		Name:             in.Name,
		Lastname:         in.Lastname,
		Surname:          in.Surname,
		Country:          in.Country,
		Email:            in.Email,
		DateRegistration: s.now().UTC(),
		ConsentToMailing: in.ConsentToMailing,
		HashedPassword:   hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.log.Warn("email already exists", zap.String("email", in.Email))
			return nil, pkgerrors.NewAlreadyExistsError("user", fmt.Sprintf("user with email %s already exists", in.Email))
		}
		s.log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	return &CreateUserResponse{ID: id}, nil
}

// UpdateUser applies a partial update. An empty update is rejected before
// the store is touched.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	s.log.Info("updating user", zap.String("id", in.ID.String()))

	patch := in.patch()
	if patch.IsEmpty() {
		s.log.Warn("update user validation failed", zap.String("id", in.ID.String()), zap.String("reason", "empty patch"))
		return nil, pkgerrors.NewValidationError("", "at least one field must be provided")
	}

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id, err := s.repo.Update(ctx, in.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, notFound(in.ID)
		case errors.Is(err, domain.ErrEmailTaken):
			s.log.Warn("email already exists", zap.String("id", in.ID.String()))
			return nil, pkgerrors.NewAlreadyExistsError("user", "user with this email already exists")
		}
		s.log.Error("failed to update user", zap.String("id", in.ID.String()), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}

	return &UpdateUserResponse{ID: id}, nil
}

// DeleteUser permanently removes a user.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	s.log.Info("deleting user", zap.String("id", in.ID.String()))

	id, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound(in.ID)
		}
		s.log.Error("failed to delete user", zap.String("id", in.ID.String()), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	return &DeleteUserResponse{ID: id}, nil
}

// GetUser retrieves a user profile by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound(in.ID)
		}
		s.log.Error("failed to get user", zap.String("id", in.ID.String()), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	return toGetUserResponse(u), nil
}

func notFound(id uuid.UUID) error {
	return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user with id %s not found", id))
}
