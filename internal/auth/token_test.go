package auth

import (
	"testing"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("member-1", domain.SubjectTypeMember, "+911234567890")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expiry not set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.SubjectID != "member-1" || claims.Subject != domain.SubjectTypeMember || claims.Phone != "+911234567890" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken("member-1", domain.SubjectTypeMember, "")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := NewTokenManager("secret-b", 30).ParseToken(token); err == nil {
		t.Error("token signed with another secret must not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret", 30).ParseToken("not-a-token"); err == nil {
		t.Error("garbage must not parse")
	}
}
