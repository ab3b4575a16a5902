package user

import (
	"time"

	"github.com/google/uuid"

	domain "store-api/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Lastname         *string `json:"lastname,omitempty" validate:"omitnil,max=100"`
	Surname          string  `json:"surname" validate:"required,max=100"`
	Country          string  `json:"country" validate:"required,max=100"`
	Email            string  `json:"user_email" validate:"required,email,max=254"`
	ConsentToMailing bool    `json:"consent_to_mailing"`
	// Password is capped at 72 bytes, the bcrypt input limit.
	Password string `json:"user_pass" validate:"required,maxbytes=72"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	ID uuid.UUID `json:"user_id"`
}

// UpdateUserRequest carries a partial update. Nil fields are left untouched
// and at least one field must be set.
type UpdateUserRequest struct {
	ID               uuid.UUID `json:"-"`
	Name             *string   `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Lastname         *string   `json:"lastname,omitempty" validate:"omitnil,max=100"`
	Surname          *string   `json:"surname,omitempty" validate:"omitnil,min=1,max=100"`
	Country          *string   `json:"country,omitempty" validate:"omitnil,min=1,max=100"`
	Email            *string   `json:"user_email,omitempty" validate:"omitnil,email,max=254"`
	ConsentToMailing *bool     `json:"consent_to_mailing,omitempty"`
}

func (in UpdateUserRequest) patch() domain.Patch {
	return domain.Patch{
		Name:             in.Name,
		Lastname:         in.Lastname,
		Surname:          in.Surname,
		Country:          in.Country,
		Email:            in.Email,
		ConsentToMailing: in.ConsentToMailing,
	}
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	ID uuid.UUID `json:"user_id"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID uuid.UUID
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID uuid.UUID `json:"user_id"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID uuid.UUID
}

// GetUserResponse is the public user profile. It never carries the
// password hash.
type GetUserResponse struct {
	ID               uuid.UUID `json:"user_id"`
	Name             string    `json:"name"`
	Lastname         *string   `json:"lastname"`
	Surname          string    `json:"surname"`
	Country          string    `json:"country"`
	Email            string    `json:"user_email"`
	DateRegistration time.Time `json:"date_registration"`
	ConsentToMailing bool      `json:"consent_to_mailing"`
}

func toGetUserResponse(u *domain.User) *GetUserResponse {
	return &GetUserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Lastname:         u.Lastname,
		Surname:          u.Surname,
		Country:          u.Country,
		Email:            u.Email,
		DateRegistration: u.DateRegistration,
		ConsentToMailing: u.ConsentToMailing,
	}
}
