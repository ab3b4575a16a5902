package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"gorm.io/gorm"

	"store-api/internal/adapter/db/postgres"
	"store-api/internal/usecase/auth"
	"store-api/internal/usecase/user"
	"store-api/pkg/logger"
	"store-api/pkg/metrics"
	"store-api/pkg/security"
)

const testSecret = "grpc-test-secret"

func setupClient(t *testing.T) (*UserServiceClient, *metrics.Metrics) {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	hasher, err := security.NewPasswordHasher(security.HashBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := security.NewTokenIssuer(testSecret, "HS256")
	require.NoError(t, err)

	repo := postgres.NewUserRepoPG(db, log)
	m := metrics.New("test")

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logger.RequestIDInterceptor(),
		LoggingInterceptor(log),
		MetricsInterceptor(m),
		ErrorInterceptor(log),
	))
	RegisterUserServiceServer(srv, NewUserServiceServer(
		user.New(repo, hasher, log),
		auth.New(repo, hasher, issuer, 30*time.Minute, log),
		m,
		log,
	))

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewUserServiceClient(conn), m
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	st, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return st
}

func createUser(t *testing.T, client *UserServiceClient, email string) string {
	resp, err := client.CreateUser(context.Background(), mustStruct(t, map[string]any{
		"name":               "A",
		"surname":            "B",
		"country":            "US",
		"user_email":         email,
		"user_pass":          "secret",
		"consent_to_mailing": true,
	}))
	require.NoError(t, err)
	id := resp.GetFields()["user_id"].GetStringValue()
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	return id
}

func TestUserService_CRUD(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	id := createUser(t, client, "a@x.com")

	got, err := client.GetUser(ctx, wrapperspb.String(id))
	require.NoError(t, err)
	fields := got.GetFields()
	assert.Equal(t, "a@x.com", fields["user_email"].GetStringValue())
	assert.True(t, fields["consent_to_mailing"].GetBoolValue())
	assert.NotContains(t, fields, "hashed_password")

	_, err = client.UpdateUser(ctx, mustStruct(t, map[string]any{"user_uuid": id, "country": "DE"}))
	require.NoError(t, err)

	got, err = client.GetUser(ctx, wrapperspb.String(id))
	require.NoError(t, err)
	assert.Equal(t, "DE", got.GetFields()["country"].GetStringValue())

	_, err = client.DeleteUser(ctx, wrapperspb.String(id))
	require.NoError(t, err)

	_, err = client.GetUser(ctx, wrapperspb.String(id))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUserService_ErrorCodes(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()
	id := createUser(t, client, "dup@x.com")

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"duplicate email", func() error {
			_, err := client.CreateUser(ctx, mustStruct(t, map[string]any{
				"name": "C", "surname": "D", "country": "FR", "user_email": "dup@x.com", "user_pass": "x",
			}))
			return err
		}, codes.AlreadyExists},
		{"invalid create", func() error {
			_, err := client.CreateUser(ctx, mustStruct(t, map[string]any{"name": "C"}))
			return err
		}, codes.InvalidArgument},
		{"empty update", func() error {
			_, err := client.UpdateUser(ctx, mustStruct(t, map[string]any{"user_uuid": id}))
			return err
		}, codes.InvalidArgument},
		{"bad id", func() error {
			_, err := client.DeleteUser(ctx, wrapperspb.String("nope"))
			return err
		}, codes.InvalidArgument},
		{"unknown id", func() error {
			_, err := client.DeleteUser(ctx, wrapperspb.String(uuid.NewString()))
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(tt.call()))
		})
	}
}

func TestUserService_Login(t *testing.T) {
	client, m := setupClient(t)
	ctx := context.Background()
	id := createUser(t, client, "login@x.com")

	resp, err := client.Login(ctx, mustStruct(t, map[string]any{"username": "login@x.com", "password": "secret"}))
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.GetFields()["token_type"].GetStringValue())

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.GetFields()["access_token"].GetStringValue(), claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "login@x.com", claims["sub"])
	assert.Equal(t, id, claims["user_id"])

	_, wrong := client.Login(ctx, mustStruct(t, map[string]any{"username": "login@x.com", "password": "bad"}))
	_, unknown := client.Login(ctx, mustStruct(t, map[string]any{"username": "ghost@x.com", "password": "secret"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(wrong))
	assert.Equal(t, status.Convert(wrong).Message(), status.Convert(unknown).Message())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(metrics.LoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(metrics.LoginRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues(LoginMethod, codes.OK.String())))
}
