package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("STU-1", "student", "absence-portal", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := Parse(pair.AccessToken, "secret", "absence-portal")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "STU-1" {
		t.Errorf("subject: got %q", claims.Subject)
	}
	if claims.Role != "student" {
		t.Errorf("role: got %q", claims.Role)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("STU-1", "student", "absence-portal", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "other-secret", "absence-portal"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("STU-1", "student", "someone-else", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "secret", "absence-portal"); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	pair, err := Issue("STU-1", "student", "absence-portal", "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "secret", "absence-portal"); err == nil {
		t.Fatal("expected expiry error")
	}
}
