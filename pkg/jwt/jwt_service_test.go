package jwt

import (
	"errors"
	"testing"
	"time"

	"foodshare/domain"

	"github.com/golang-jwt/jwt/v4"
)

func testService(secret string) *jwtService {
	return &jwtService{secretKey: secret, issuer: "FOODSHARE"}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService("test-secret")

	token := svc.GenerateTokenUser("user-42", domain.RoleUser)
	if token == "" {
		t.Fatal("empty token")
	}

	userID, role, err := svc.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if userID != "user-42" || role != domain.RoleUser {
		t.Errorf("claims = (%q, %q), want (user-42, %q)", userID, role, domain.RoleUser)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token := testService("secret-a").GenerateTokenUser("user-42", domain.RoleUser)

	if _, _, err := testService("secret-b").GetUserIDByToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("err = %v, want %v", err, domain.ErrTokenInvalid)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, _, err := testService("test-secret").GetUserIDByToken("not.a.token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("err = %v, want %v", err, domain.ErrTokenInvalid)
	}
}

func TestTokenExpired(t *testing.T) {
	svc := testService("test-secret")

	claims := jwtUserClaim{
		"user-42",
		domain.RoleUser,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Issuer:    svc.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.secretKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := svc.GetUserIDByToken(expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("err = %v, want %v", err, domain.ErrTokenExpired)
	}
}
