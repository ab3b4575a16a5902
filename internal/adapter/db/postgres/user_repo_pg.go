package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"store-api/internal/domain/user"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// UserRepoPG implements the user Repository on top of GORM. It works with
// both the postgres and the sqlite dialector.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Lastname         *string   `gorm:"column:lastname"`
	Surname          string    `gorm:"column:surname;not null"`
	Country          string    `gorm:"column:country;not null"`
	UserEmail        string    `gorm:"column:user_email;not null;uniqueIndex"`
	DateRegistration time.Time `gorm:"column:date_registration;not null"`
	ConsentToMailing bool      `gorm:"column:consent_to_mailing;not null"`
	HashedPassword   string    `gorm:"column:hashed_password;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (s UserSchema) toDomain() *user.User {
	return &user.User{
		ID:               s.UserID,
		Name:             s.Name,
		Lastname:         s.Lastname,
		Surname:          s.Surname,
		Country:          s.Country,
		Email:            s.UserEmail,
		DateRegistration: s.DateRegistration,
		ConsentToMailing: s.ConsentToMailing,
		HashedPassword:   s.HashedPassword,
	}
}

// Create inserts a new user. The caller assigns ID and DateRegistration.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	if u == nil {
		return uuid.Nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		UserID:           u.ID,
		Name:             u.Name,
		Lastname:         u.Lastname,
		Surname:          u.Surname,
		Country:          u.Country,
		UserEmail:        u.Email,
		DateRegistration: u.DateRegistration,
		ConsentToMailing: u.ConsentToMailing,
		HashedPassword:   u.HashedPassword,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("user email already exists in db", zap.String("email", u.Email))
			return uuid.Nil, user.ErrEmailTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.UserID.String()))
	return model.UserID, nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id.String()))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves only the columns needed to check a password.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.Credentials, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Select("user_id", "user_email", "hashed_password").
		Where("user_email = ?", email).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user.Credentials{
		ID:             model.UserID,
		Email:          model.UserEmail,
		HashedPassword: model.HashedPassword,
	}, nil
}

// Update writes only the fields present in patch in a single UPDATE.
func (r *UserRepoPG) Update(ctx context.Context, id uuid.UUID, patch user.Patch) (uuid.UUID, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return uuid.Nil, errors.New("empty patch")
	}

	result := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("user_id = ?", id).
		Updates(cols)
	if err := result.Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("user email already exists in db", zap.String("id", id.String()))
			return uuid.Nil, user.ErrEmailTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id.String()))
		return uuid.Nil, fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected == 0 {
		r.log.Debug("update matched no user", zap.String("id", id.String()))
		return uuid.Nil, user.ErrNotFound
	}

	r.log.Info("user updated in db", zap.String("id", id.String()), zap.Int("fields", len(cols)))
	return id, nil
}

// Delete permanently removes a user.
func (r *UserRepoPG) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&UserSchema{})
	if err := result.Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id.String()))
		return uuid.Nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected == 0 {
		r.log.Debug("delete matched no user", zap.String("id", id.String()))
		return uuid.Nil, user.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.String("id", id.String()))
	return id, nil
}

// isUniqueViolation recognizes duplicate-key errors from gorm's translated
// error, pgx, and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
