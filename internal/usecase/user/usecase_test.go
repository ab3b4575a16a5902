package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "store-api/internal/domain/user"
	pkgerrors "store-api/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (uuid.UUID, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credentials), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (uuid.UUID, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// stubHasher prefixes the plaintext so tests can assert what was stored.
type stubHasher struct {
	err error
}

func (h stubHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	svc := New(mockRepo, stubHasher{}, zaptest.NewLogger(t))
	svc.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { mockRepo.AssertExpectations(t) })
	return svc, mockRepo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Name:             "A",
		Surname:          "B",
		Country:          "US",
		Email:            "a@x.com",
		ConsentToMailing: true,
		Password:         "secret",
	}
}

func TestCreateUser_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	var stored *domain.User
	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(uuid.MustParse("7f1c2a2e-5c55-4c35-9a8e-0d1c6bb2d001"), nil)

	resp, err := svc.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "7f1c2a2e-5c55-4c35-9a8e-0d1c6bb2d001", resp.ID.String())

	require.NotNil(t, stored)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, "hashed:secret", stored.HashedPassword)
	assert.Equal(t, time.UTC, stored.DateRegistration.Location())
	assert.True(t, fixedNow.Equal(stored.DateRegistration))
	assert.Equal(t, "a@x.com", stored.Email)
	assert.True(t, stored.ConsentToMailing)
	assert.Nil(t, stored.Lastname)
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateUserRequest)
		wantMsg string
	}{
		{"missing name", func(r *CreateUserRequest) { r.Name = "" }, "name is required"},
		{"missing surname", func(r *CreateUserRequest) { r.Surname = "" }, "surname is required"},
		{"missing country", func(r *CreateUserRequest) { r.Country = "" }, "country is required"},
		{"bad email", func(r *CreateUserRequest) { r.Email = "not-an-email" }, "user_email must be a valid email"},
		{"missing password", func(r *CreateUserRequest) { r.Password = "" }, "user_pass is required"},
		{"password too long", func(r *CreateUserRequest) { r.Password = strings.Repeat("p", 73) }, "user_pass must be at most 72 bytes"},
		{"multi-byte password over 72 bytes", func(r *CreateUserRequest) { r.Password = strings.Repeat("é", 40) }, "user_pass must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestService(t)
			req := validCreateRequest()
			tt.mutate(&req)

			_, err := svc.CreateUser(context.Background(), req)

			var vErr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCreateUser_MultiBytePasswordAtLimit(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	// 36 two-byte runes are exactly 72 bytes
	req := validCreateRequest()
	req.Password = strings.Repeat("é", 36)

	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(uuid.New(), nil)

	_, err := svc.CreateUser(ctx, req)
	require.NoError(t, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(uuid.Nil, domain.ErrEmailTaken)

	_, err := svc.CreateUser(ctx, validCreateRequest())
	var exists *pkgerrors.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Contains(t, err.Error(), "a@x.com")
}

func TestCreateUser_StoreFault(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(uuid.Nil, errors.New("connection refused"))

	_, err := svc.CreateUser(ctx, validCreateRequest())
	var internal *pkgerrors.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "failed to create user", internal.Message)
}

func TestCreateUser_HashFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, stubHasher{err: errors.New("boom")}, zaptest.NewLogger(t))

	_, err := svc.CreateUser(context.Background(), validCreateRequest())
	var internal *pkgerrors.InternalError
	require.ErrorAs(t, err, &internal)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetUser(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("GetByID", ctx, id).Return(&domain.User{
			ID:               id,
			Name:             "A",
			Surname:          "B",
			Country:          "US",
			Email:            "a@x.com",
			DateRegistration: fixedNow,
			ConsentToMailing: true,
			HashedPassword:   "hashed:secret",
		}, nil)

		resp, err := svc.GetUser(ctx, GetUserRequest{ID: id})
		require.NoError(t, err)
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, "a@x.com", resp.Email)
		assert.True(t, resp.ConsentToMailing)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

		_, err := svc.GetUser(ctx, GetUserRequest{ID: id})
		var nf *pkgerrors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Contains(t, err.Error(), id.String())
	})

	t.Run("store fault", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("GetByID", ctx, id).Return(nil, errors.New("timeout"))

		_, err := svc.GetUser(ctx, GetUserRequest{ID: id})
		var internal *pkgerrors.InternalError
		require.ErrorAs(t, err, &internal)
	})
}

func TestUpdateUser_EmptyPatchNeverReachesStore(t *testing.T) {
	svc, repo := setupTestService(t)

	_, err := svc.UpdateUser(context.Background(), UpdateUserRequest{ID: uuid.New()})

	var vErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "at least one field")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()
	id := uuid.New()

	want := domain.Patch{Country: strPtr("DE"), ConsentToMailing: boolPtr(false)}
	repo.On("Update", ctx, id, want).Return(id, nil)

	resp, err := svc.UpdateUser(ctx, UpdateUserRequest{
		ID:               id,
		Country:          strPtr("DE"),
		ConsentToMailing: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
}

func TestUpdateUser_Errors(t *testing.T) {
	id := uuid.New()

	t.Run("invalid email", func(t *testing.T) {
		svc, repo := setupTestService(t)
		_, err := svc.UpdateUser(context.Background(), UpdateUserRequest{ID: id, Email: strPtr("nope")})
		var vErr *pkgerrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank required field", func(t *testing.T) {
		svc, _ := setupTestService(t)
		_, err := svc.UpdateUser(context.Background(), UpdateUserRequest{ID: id, Name: strPtr("")})
		var vErr *pkgerrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, err.Error(), "name must be at least 1 characters")
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("Update", ctx, id, mock.Anything).Return(uuid.Nil, domain.ErrNotFound)

		_, err := svc.UpdateUser(ctx, UpdateUserRequest{ID: id, Name: strPtr("X")})
		var nf *pkgerrors.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("Update", ctx, id, mock.Anything).Return(uuid.Nil, domain.ErrEmailTaken)

		_, err := svc.UpdateUser(ctx, UpdateUserRequest{ID: id, Email: strPtr("b@x.com")})
		var exists *pkgerrors.AlreadyExistsError
		require.ErrorAs(t, err, &exists)
	})
}

func TestDeleteUser(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("Delete", ctx, id).Return(id, nil)

		resp, err := svc.DeleteUser(ctx, DeleteUserRequest{ID: id})
		require.NoError(t, err)
		assert.Equal(t, id, resp.ID)
	})

	t.Run("missing user stays missing", func(t *testing.T) {
		svc, repo := setupTestService(t)
		ctx := context.Background()
		repo.On("Delete", ctx, id).Return(uuid.Nil, domain.ErrNotFound)
		repo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

		_, err := svc.DeleteUser(ctx, DeleteUserRequest{ID: id})
		var nf *pkgerrors.NotFoundError
		require.ErrorAs(t, err, &nf)

		_, err = svc.GetUser(ctx, GetUserRequest{ID: id})
		require.ErrorAs(t, err, &nf)
	})
}
