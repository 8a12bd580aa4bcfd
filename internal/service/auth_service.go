package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_tracker/internal/models"
	"finance_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour          // 1 hour
	refreshTokenTTL = 5 * 24 * time.Hour // 5 days
)

// Domain errors for auth flows.
var (
	ErrEmailTaken      = errors.New("email already exists")
	ErrEmailNotFound   = errors.New("email not found")
	ErrInvalidPassword = errors.New("password is incorrect")

	// Token verdicts. The middleware maps these exhaustively onto
	// responses; anything outside the set is an internal fault.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenPayload = errors.New("invalid token payload")
)

// TokenSecrets holds the two independent signing secrets.
type TokenSecrets struct {
	Access  string
	Refresh string
}

// AuthService handles registration, login and access-token verification.
type AuthService struct {
	users   repository.Users
	secrets TokenSecrets
}

func NewAuthService(users repository.Users, secrets TokenSecrets) *AuthService {
	return &AuthService{users: users, secrets: secrets}
}

var _ Authorization = (*AuthService)(nil)

// Claims defines the JWT payload shared by both tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Register checks email uniqueness, hashes the password, persists the user
// and issues both tokens. The store's unique index backs up the existence
// check against concurrent registrations.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (models.User, TokenPair, error) {
	existing, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	if existing != nil {
		return models.User{}, TokenPair{}, ErrEmailTaken
	}

	hash, err := hashPassword(p.Password)
	if err != nil {
		return models.User{}, TokenPair{}, fmt.Errorf("invalid password: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, TokenPair{}, ErrEmailTaken
		}
		return models.User{}, TokenPair{}, err
	}

	pair, err := s.issueTokens(u.ID)
	if err != nil {
		// The user row exists and is loginable; only this request fails.
		return models.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Login validates credentials against the stored digest and issues tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	if u == nil {
		return models.User{}, TokenPair{}, ErrEmailNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return models.User{}, TokenPair{}, ErrInvalidPassword
	}

	pair, err := s.issueTokens(u.ID)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return *u, pair, nil
}

// VerifyAccessToken validates signature and expiry against the access
// secret and returns the embedded user id. Failures collapse into the
// three coarse verdicts; anything else propagates as-is.
func (s *AuthService) VerifyAccessToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secrets.Access), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", ErrTokenInvalid
		default:
			return "", err
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.UserID == "" {
		return "", ErrTokenPayload
	}
	return claims.UserID, nil
}

// issueTokens signs the same {userId} payload twice, once per secret.
func (s *AuthService) issueTokens(userID string) (TokenPair, error) {
	access, err := signToken(userID, s.secrets.Access, accessTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := signToken(userID, s.secrets.Refresh, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(secret))
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
