package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerify(t *testing.T) {
	if err := Init("unit-test-secret"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	if err := Init("unit-test-secret"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	claims := jwt.MapClaims{
		"user_id": uint(7),
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign forged token: %v", err)
	}

	if _, err := VerifyJWT(forged); err == nil {
		t.Error("expected a token signed with another secret to fail")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	if err := Init("unit-test-secret"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	claims := jwt.MapClaims{
		"user_id": uint(7),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := VerifyJWT(expired); err == nil {
		t.Error("expected an expired token to fail verification")
	}
}

func TestInitRequiresSecret(t *testing.T) {
	if err := Init(""); err == nil {
		t.Error("expected Init to reject an empty secret")
	}
}
