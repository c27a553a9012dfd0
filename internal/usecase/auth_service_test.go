package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// memoryUsers is an in-memory UserDirectory.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*domain.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *memoryUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

func (m *memoryUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memoryUsers) SetFavorite(ctx context.Context, id, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FavoriteCrypto = symbol
	return nil
}

func newTestAuth(users domain.UserDirectory) *AuthService {
	prices := NewPriceService(nil, testAssets(), nil, nil)
	return NewAuthService(users, prices, AuthConfig{
		Secret:     []byte("test-secret"),
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func validSignup() SignupRequest {
	return SignupRequest{Username: "satoshi", Email: "Satoshi@Example.com", Password: "hunter22", FavoriteCrypto: "eth"}
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	users := newMemoryUsers()
	auth := newTestAuth(users)
	ctx := context.Background()

	user, token, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "satoshi@example.com", user.Email)
	assert.Equal(t, "ETH", user.FavoriteCrypto)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"), "expected a bcrypt hash")

	claims, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "satoshi", claims.Username)

	loggedIn, token2, err := auth.Login(ctx, "  satoshi@example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	current, err := auth.CurrentUser(ctx, token2)
	require.NoError(t, err)
	assert.Equal(t, "satoshi", current.Username)
}

func TestAuthService_SignupRejectsDuplicates(t *testing.T) {
	auth := newTestAuth(newMemoryUsers())
	ctx := context.Background()
	_, _, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)

	dupEmail := validSignup()
	dupEmail.Username = "other"
	_, _, err = auth.Signup(ctx, dupEmail)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	dupName := validSignup()
	dupName.Email = "other@example.com"
	_, _, err = auth.Signup(ctx, dupName)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAuthService_SignupValidation(t *testing.T) {
	auth := newTestAuth(newMemoryUsers())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SignupRequest)
		want   error
	}{
		{"missing username", func(r *SignupRequest) { r.Username = " " }, domain.ErrMissingField},
		{"missing password", func(r *SignupRequest) { r.Password = "" }, domain.ErrMissingField},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }, domain.ErrInvalidField},
		{"unknown favorite", func(r *SignupRequest) { r.FavoriteCrypto = "DOGE" }, domain.ErrUnknownSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(&req)
			_, _, err := auth.Signup(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_SignupStoresBareAddress(t *testing.T) {
	users := newMemoryUsers()
	auth := newTestAuth(users)
	ctx := context.Background()

	req := validSignup()
	req.Email = "Satoshi <Satoshi@Example.com>"
	user, _, err := auth.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "satoshi@example.com", user.Email)

	stored, err := users.FindByEmail(ctx, "satoshi@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	_, _, err = auth.Login(ctx, "satoshi@example.com", "hunter22")
	assert.NoError(t, err)

	// The same mailbox under another display name is still a duplicate.
	dup := validSignup()
	dup.Username = "nakamoto"
	dup.Email = "Other Name <satoshi@example.com>"
	_, _, err = auth.Signup(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_LoginFailures(t *testing.T) {
	auth := newTestAuth(newMemoryUsers())
	ctx := context.Background()
	_, _, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "satoshi@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_TokenExpiryAndTampering(t *testing.T) {
	auth := newTestAuth(newMemoryUsers())
	_, token, err := auth.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	auth.timeNow = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	auth.timeNow = time.Now
	_, err = auth.Verify(token + "x")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	other := newTestAuth(newMemoryUsers())
	other.cfg.Secret = []byte("different")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthService_SetFavorite(t *testing.T) {
	auth := newTestAuth(newMemoryUsers())
	ctx := context.Background()
	user, _, err := auth.Signup(ctx, validSignup())
	require.NoError(t, err)

	updated, err := auth.SetFavorite(ctx, user.ID, "bnb")
	require.NoError(t, err)
	assert.Equal(t, "BNB", updated.FavoriteCrypto)

	_, err = auth.SetFavorite(ctx, user.ID, "DOGE")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}
