package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat-server/internal/chat"
	"chat-server/internal/config"
	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byEmail map[string]*models.User
	nextID  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	f.nextID++
	user := &models.User{
		ID:           f.nextID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		CreatedAt:    time.Now(),
	}
	f.byEmail[req.Email] = user
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", chat.ErrNotFound, email)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int) (*models.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: user %d", chat.ErrNotFound, id)
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]*models.User, error) { return nil, nil }

func (f *fakeUsers) UpdateUser(_ context.Context, _ int, _ *models.UpdateUserRequest) (*models.User, error) {
	return nil, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, _ int) error { return nil }

func newTestService() (*Service, *fakeUsers) {
	users := newFakeUsers()
	cfg := &config.Config{}
	cfg.JWT.Secret = []byte("test-secret")
	cfg.JWT.ExpiresIn = time.Hour
	return NewService(users, cfg), users
}

func TestService_RegisterAndLogin(t *testing.T) {
	service, _ := newTestService()

	registered, err := service.Register(context.Background(), &models.RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     "member",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Empty(t, registered.User.PasswordHash)

	response, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, response.User.ID)

	user, err := service.GetUserFromToken(context.Background(), response.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Name)
}

func TestService_RegisterRejectsInvalidRequests(t *testing.T) {
	service, users := newTestService()

	_, err := service.Register(context.Background(), &models.RegisterRequest{
		Name:     "al",
		Email:    "not-an-email",
		Password: "short",
		Role:     "member",
	})
	require.Error(t, err)
	require.Empty(t, users.byEmail)
}

func TestService_RegisterRejectsDuplicateEmail(t *testing.T) {
	service, _ := newTestService()

	req := &models.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "secret123", Role: "member"}
	_, err := service.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), req)
	require.Error(t, err)
}

func TestService_LoginRejectsWrongPassword(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Register(context.Background(), &models.RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     "member",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), &models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
}

func TestService_ValidateTokenRejectsTampering(t *testing.T) {
	service, _ := newTestService()

	registered, err := service.Register(context.Background(), &models.RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     "member",
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(registered.Token + "x")
	require.Error(t, err)
}
