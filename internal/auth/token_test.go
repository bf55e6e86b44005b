package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-jwt-secret-32bytes-long!!!!"

func TestTokenService_IssueAndVerify_RoundTrip(t *testing.T) {
	s := NewTokenService(testSecret, 60)

	token, err := s.Issue(42, "a@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("UserID = %d, want %d", userID, 42)
	}
	if claims.Email != "a@test.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "a@test.com")
	}
}

// exp = iat + TTL が設定されることを検証
func TestTokenService_Issue_SetsExpiryFromTTL(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService(testSecret, 60)
	s.now = func() time.Time { return issued }

	token, err := s.Issue(1, "a@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if !claims.IssuedAt.Time.Equal(issued) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, issued)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(60 * time.Minute)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, issued.Add(60*time.Minute))
	}
}

// TTL=60分のトークンがiat+1秒では有効、iat+3601秒では期限切れになることを検証
func TestTokenService_Verify_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService(testSecret, 60)
	s.now = func() time.Time { return issued }

	token, err := s.Issue(1, "a@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// iat+1秒: 有効
	s.now = func() time.Time { return issued.Add(1 * time.Second) }
	if _, err := s.Verify(token); err != nil {
		t.Errorf("token should be valid at iat+1s, got %v", err)
	}

	// iat+3601秒: 期限切れ
	s.now = func() time.Time { return issued.Add(3601 * time.Second) }
	_, err = s.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired at iat+3601s, got %v", err)
	}
}

func TestTokenService_Verify_WrongSecret_InvalidSignature(t *testing.T) {
	s1 := NewTokenService(testSecret, 60)
	s2 := NewTokenService("another-secret-entirely-different", 60)

	token, err := s1.Issue(1, "a@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = s2.Verify(token)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenService_Verify_Garbage_Malformed(t *testing.T) {
	s := NewTokenService(testSecret, 60)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := s.Verify(token)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

// 改ざんされたペイロードは署名検証で拒否されることを検証
func TestTokenService_Verify_TamperedToken_Rejected(t *testing.T) {
	s := NewTokenService(testSecret, 60)

	token, err := s.Issue(1, "a@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := token[:len(token)-4] + "xxxx"
	if _, err := s.Verify(tampered); err == nil {
		t.Error("tampered token should not verify")
	}
}

func TestClaims_UserID_InvalidSubject(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "not-a-number"

	if _, err := claims.UserID(); err == nil {
		t.Error("expected error for non-numeric subject")
	}
}
