package server

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, expiresAt, err := tm.GenerateToken("kitchen-speaker")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) > time.Minute {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "kitchen-speaker" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Minute).GenerateToken("x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("two", time.Minute).ParseToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.ttl = -time.Minute
	token, _, err := tm.GenerateToken("x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("expired token accepted")
	}
}
