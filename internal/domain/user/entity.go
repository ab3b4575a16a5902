package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered store user.
type User struct {
	ID               uuid.UUID // ID is generated at creation and never changes
	Name             string
	Lastname         *string // Lastname is optional
	Surname          string
	Country          string
	Email            string    // Email is unique across all users
	DateRegistration time.Time // DateRegistration is set once at creation
	ConsentToMailing bool
	HashedPassword   string `json:"-"` // never serialized, never returned by reads
}

// Credentials is the narrow view of a user needed to check a password.
type Credentials struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name             *string
	Lastname         *string
	Surname          *string
	Country          *string
	Email            *string
	ConsentToMailing *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil &&
		p.Lastname == nil &&
		p.Surname == nil &&
		p.Country == nil &&
		p.Email == nil &&
		p.ConsentToMailing == nil
}

// Columns returns the supplied fields keyed by their column name.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 6)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Lastname != nil {
		cols["lastname"] = *p.Lastname
	}
	if p.Surname != nil {
		cols["surname"] = *p.Surname
	}
	if p.Country != nil {
		cols["country"] = *p.Country
	}
	if p.Email != nil {
		cols["user_email"] = *p.Email
	}
	if p.ConsentToMailing != nil {
		cols["consent_to_mailing"] = *p.ConsentToMailing
	}
	return cols
}
