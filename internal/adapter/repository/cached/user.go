package cached

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"store-api/internal/adapter/cache"
	domain "store-api/internal/domain/user"
	"store-api/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with a read-through
// profile cache. Credentials lookups always go to the database.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (uuid.UUID, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.String("id", id.String()), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// concurrent misses for the same id share one database read, which must
	// not fail for everyone when the caller that started it goes away
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		fctx := context.WithoutCancel(ctx)

		version, verErr := r.cache.Version(fctx, id)
		if verErr != nil {
			r.log.Warn("cache version read error, skipping cache fill", zap.String("id", id.String()), zap.Error(verErr))
		}

		u, err := r.dbRepo.GetByID(fctx, id)
		if err != nil {
			return nil, err
		}

		if verErr == nil {
			err := r.cache.Set(fctx, u, version)
			switch {
			case errors.Is(err, cache.ErrStale):
				r.log.Debug("user changed during read, not cached", zap.String("id", id.String()))
			case err != nil:
				r.log.Warn("failed to cache user", zap.String("id", id.String()), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the value
	return cloneUser(result.(*domain.User)), nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Lastname != nil {
		lastname := *u.Lastname
		c.Lastname = &lastname
	}
	return &c
}

// GetByEmail delegates to the DB repository. Password hashes are never cached.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update updates the user in DB and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (uuid.UUID, error) {
	updatedID, err := r.dbRepo.Update(ctx, id, patch)
	if err != nil {
		return uuid.Nil, err
	}

	r.invalidate(ctx, id, "update")
	return updatedID, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	deletedID, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	r.invalidate(ctx, id, "delete")
	return deletedID, nil
}

// invalidate runs after a committed write, so it outlives the caller.
func (r *CachedUserRepository) invalidate(ctx context.Context, id uuid.UUID, op string) {
	if err := r.cache.Delete(context.WithoutCancel(ctx), id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.String("id", id.String()), zap.Error(err))
	}
}
