package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), time.Hour)

	token, err := svc.GenerateToken("owner-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want owner-1", claims.OwnerID)
	}
	if claims.Issuer != "breachwatch" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := NewJWTService([]byte("secret-a"), time.Hour)
	other := NewJWTService([]byte("secret-b"), time.Hour)

	token, err := svc.GenerateToken("owner-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with different secret validated")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), -time.Minute)

	token, err := svc.GenerateToken("owner-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token validated")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), time.Hour)

	for _, token := range []string{"", "not-a-token", strings.Repeat("a.", 3)} {
		if _, err := svc.ValidateToken(token); err == nil {
			t.Errorf("garbage token %q validated", token)
		}
	}
}
