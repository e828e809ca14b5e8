package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID = %d, want 42", userID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ValidateToken(bad); err == nil {
			t.Fatalf("ValidateToken(%q) should fail", bad)
		}
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	claims := jwt.MapClaims{"sub": "42"}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}
	if _, err := ValidateToken(forged); err == nil {
		t.Fatal("token signed with the wrong key should fail validation")
	}
}

func TestValidateTokenRejectsBadSubject(t *testing.T) {
	claims := jwt.MapClaims{"sub": "not-a-number"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecretKey())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("non-numeric subject should fail validation")
	}
}
