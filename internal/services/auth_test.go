package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/requestdata"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

func newTokenOnlyAuthService(t *testing.T, secret string, accessTTL time.Duration) *authService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &authService{
		log:          log,
		jwtSecretKey: secret,
		accessTTL:    accessTTL,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTokenOnlyAuthService(t, "test-secret", time.Hour)
	user := &types.User{ID: uuid.New()}

	token, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("request data missing after token parse")
	}
	if rd.UserID != user.ID {
		t.Fatalf("subject: want=%s got=%s", user.ID, rd.UserID)
	}
	if rd.TokenString != token {
		t.Fatalf("token string not carried through")
	}
}

func TestSetContextFromTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTokenOnlyAuthService(t, "secret-a", time.Hour)
	verifier := newTokenOnlyAuthService(t, "secret-b", time.Hour)

	token, err := issuer.generateAccessToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := verifier.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestSetContextFromTokenRejectsExpired(t *testing.T) {
	svc := newTokenOnlyAuthService(t, "test-secret", -time.Minute)

	token, err := svc.generateAccessToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestSetContextFromTokenRejectsWrongAlgorithm(t *testing.T) {
	svc := newTokenOnlyAuthService(t, "test-secret", time.Hour)

	// Unsigned token; only HMAC is accepted.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.New().String()})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestSetContextFromTokenRejectsGarbageSubject(t *testing.T) {
	svc := newTokenOnlyAuthService(t, "test-secret", time.Hour)

	claims := jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestLogoutRequiresAuthContext(t *testing.T) {
	svc := newTokenOnlyAuthService(t, "test-secret", time.Hour)
	if err := svc.LogoutUser(context.Background()); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}
