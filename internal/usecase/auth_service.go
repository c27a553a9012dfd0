package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// SessionClaims identify a signed-in user. Subject holds the user ID.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FavoriteCrypto string `json:"favorite_crypto"`
}

type AuthConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
}

// SymbolChecker reports whether an asset is tracked.
type SymbolChecker interface {
	Has(symbol string) bool
}

// AuthService manages dashboard accounts. Passwords are stored as bcrypt hashes
// and sessions are short-lived HS256 tokens.
type AuthService struct {
	users   domain.UserDirectory
	symbols SymbolChecker
	cfg     AuthConfig
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewAuthService(users domain.UserDirectory, symbols SymbolChecker, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:   users,
		symbols: symbols,
		cfg:     cfg,
		logger:  logger,
		timeNow: time.Now,
	}
}

// SessionTTL is how long issued tokens stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, string, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	favorite := strings.ToUpper(strings.TrimSpace(req.FavoriteCrypto))

	switch {
	case username == "":
		return nil, "", fmt.Errorf("%w: username", domain.ErrMissingField)
	case email == "":
		return nil, "", fmt.Errorf("%w: email", domain.ErrMissingField)
	case req.Password == "":
		return nil, "", fmt.Errorf("%w: password", domain.ErrMissingField)
	case favorite == "":
		return nil, "", fmt.Errorf("%w: favorite_crypto", domain.ErrMissingField)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: email is malformed", domain.ErrInvalidField)
	}
	// A display-name form like "Name <a@b.co>" is stored as the bare address.
	email = normalizeEmail(addr.Address)
	if !s.symbols.Has(favorite) {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, favorite)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, "", domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		FavoriteCrypto: favorite,
		CreatedAt:      s.timeNow().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}
	s.logger.Info("User signed up", zap.String("user_id", user.ID), zap.String("username", username))

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.timeNow()
	claims := &SessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (s *AuthService) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.timeNow))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return claims, nil
}

// CurrentUser resolves a session token to its user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidToken
	}
	return user, err
}

func (s *AuthService) SetFavorite(ctx context.Context, userID, symbol string) (*domain.User, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if !s.symbols.Has(sym) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	if err := s.users.SetFavorite(ctx, userID, sym); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}
