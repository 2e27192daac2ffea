package utils

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "supersecret"

	token, err := GenerateToken("user_123", "ana", "https://cdn.example/ana.png", secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != "user_123" {
		t.Errorf("Expected UserID user_123, got %s", claims.UserID)
	}
	if claims.Username != "ana" {
		t.Errorf("Expected Username ana, got %s", claims.Username)
	}
	if claims.AvatarURL != "https://cdn.example/ana.png" {
		t.Errorf("Expected avatar claim preserved, got %s", claims.AvatarURL)
	}

	_, err = ValidateToken(token, "wrongsecret")
	if err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestValidateTokenRejectsMissingUserID(t *testing.T) {
	secret := "supersecret"
	token, err := GenerateToken("", "ana", "", secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := ValidateToken(token, secret); err == nil {
		t.Errorf("Expected error for token without user id")
	}
}
