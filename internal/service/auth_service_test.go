package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"finance_tracker/internal/models"
	"finance_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var testSecrets = TokenSecrets{Access: "access-secret", Refresh: "refresh-secret"}

// mockUserRepo is a lightweight in-test mock for repository.Users.
type mockUserRepo struct {
	CreateFn     func(u models.User) error
	GetByEmailFn func(email string) (*models.User, error)

	created  []models.User
	getCalls []string
}

func (m *mockUserRepo) Create(ctx context.Context, u models.User) error {
	m.created = append(m.created, u)
	if m.CreateFn != nil {
		return m.CreateFn(u)
	}
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.getCalls = append(m.getCalls, email)
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(email)
	}
	return nil, nil
}

// --- Register tests ---

func TestAuthService_Register_HashesPasswordAndIssuesTokens(t *testing.T) {
	mock := &mockUserRepo{}
	svc := NewAuthService(mock, testSecrets)

	user, pair, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pass",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}

	if len(mock.created) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.created))
	}
	stored := mock.created[0]
	if stored.PasswordHash == "Str0ng!Pass" {
		t.Errorf("password must not be stored in plaintext")
	}
	if err := verifyPassword(stored.PasswordHash, "Str0ng!Pass"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}

	// Both tokens carry the same user id; only the access one verifies
	// against the access secret.
	uid, err := svc.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if uid != user.ID {
		t.Fatalf("access token user id: got %q, want %q", uid, user.ID)
	}
	if _, err := svc.VerifyAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token must not pass access verification, got %v", err)
	}
}

func TestAuthService_Register_EqualPasswordsHashDifferently(t *testing.T) {
	mock := &mockUserRepo{}
	svc := NewAuthService(mock, testSecrets)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if _, _, err := svc.Register(context.Background(), RegisterParams{
			Username: "u", Email: email, Password: "Str0ng!Pass",
		}); err != nil {
			t.Fatalf("Register(%s): %v", email, err)
		}
	}
	if mock.created[0].PasswordHash == mock.created[1].PasswordHash {
		t.Fatalf("bcrypt digests must be salted, got identical hashes")
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	existing := &models.User{ID: "u-0", Email: "taken@x.com"}
	mock := &mockUserRepo{
		GetByEmailFn: func(email string) (*models.User, error) { return existing, nil },
	}
	svc := NewAuthService(mock, testSecrets)

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Username: "x", Email: "taken@x.com", Password: "Str0ng!Pass",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(mock.created) != 0 {
		t.Fatalf("no user row should be created")
	}
}

func TestAuthService_Register_UniqueIndexBackstop(t *testing.T) {
	// Two racing registrations both pass the existence check; the second
	// insert trips the unique index and must still answer as a conflict.
	mock := &mockUserRepo{
		CreateFn: func(u models.User) error { return repository.ErrDuplicateEmail },
	}
	svc := NewAuthService(mock, testSecrets)

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Username: "x", Email: "race@x.com", Password: "Str0ng!Pass",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken from index backstop, got %v", err)
	}
}

// --- Login tests ---

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := hashPassword("letmein1!A")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	user := &models.User{ID: "u-7", Username: "diana", Email: "diana@x.com", PasswordHash: hash}

	mock := &mockUserRepo{
		GetByEmailFn: func(email string) (*models.User, error) {
			if email != "diana@x.com" {
				t.Fatalf("expected lookup by email, got %q", email)
			}
			return user, nil
		},
	}
	svc := NewAuthService(mock, testSecrets)

	got, pair, err := svc.Login(context.Background(), "diana@x.com", "letmein1!A")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.ID != "u-7" {
		t.Fatalf("unexpected user: %+v", got)
	}

	uid, err := svc.VerifyAccessToken(pair.AccessToken)
	if err != nil || uid != "u-7" {
		t.Fatalf("token round-trip failed: uid=%q err=%v", uid, err)
	}
}

func TestAuthService_Login_EmailNotFound(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testSecrets)

	_, _, err := svc.Login(context.Background(), "ghost@x.com", "pw")
	if !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound, got %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	hash, err := hashPassword("correct1!A")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockUserRepo{
		GetByEmailFn: func(email string) (*models.User, error) {
			return &models.User{ID: "u-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := NewAuthService(mock, testSecrets)

	_, _, err = svc.Login(context.Background(), "eve@x.com", "wrong")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_Login_RepoError(t *testing.T) {
	mock := &mockUserRepo{
		GetByEmailFn: func(email string) (*models.User, error) {
			return nil, errors.New("query failed")
		},
	}
	svc := NewAuthService(mock, testSecrets)

	_, _, err := svc.Login(context.Background(), "john@x.com", "pw")
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- VerifyAccessToken tests ---

func signTestToken(t *testing.T, userID, secret string, expiresAt time.Time) string {
	t.Helper()
	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	s, err := tk.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func TestAuthService_VerifyAccessToken_Verdicts(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testSecrets)

	cases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "valid",
			token:   signTestToken(t, "u-9", testSecrets.Access, time.Now().Add(time.Hour)),
			wantErr: nil,
		},
		{
			// Older than its TTL is always the "expired" category, never "invalid".
			name:    "expired",
			token:   signTestToken(t, "u-9", testSecrets.Access, time.Now().Add(-time.Minute)),
			wantErr: ErrTokenExpired,
		},
		{
			name:    "wrong secret",
			token:   signTestToken(t, "u-9", "different-key", time.Now().Add(time.Hour)),
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "malformed",
			token:   "not-a-jwt",
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "payload without userId",
			token:   signTestToken(t, "", testSecrets.Access, time.Now().Add(time.Hour)),
			wantErr: ErrTokenPayload,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uid, err := svc.VerifyAccessToken(tc.token)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if uid != "u-9" {
					t.Fatalf("expected user id u-9, got %q", uid)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_VerifyAccessToken_UnexpectedAlg(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testSecrets)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}

	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: "u-12",
	})
	tokenStr, err := tk.SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.VerifyAccessToken(tokenStr); err == nil {
		t.Fatalf("expected error due to unexpected signing method")
	}
}
