package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/models"
)

func newTestService(expiration time.Duration) *Service {
	return NewService(&config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        expiration,
		RefreshExpiration: 168 * time.Hour,
	})
}

func TestHashPassword(t *testing.T) {
	svc := newTestService(time.Hour)

	password := "@Abcde12345"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "" || hash == password {
		t.Error("Hash should be non-empty and differ from the password")
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(time.Hour)

	issued, err := svc.GenerateAccessToken(1, "OnDQ")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if issued.Token == "" || issued.JTI == "" {
		t.Fatal("Token and JTI should not be empty")
	}

	claims, err := svc.ValidateToken(issued.Token, models.TokenTypeAccess)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "OnDQ" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.ID != issued.JTI {
		t.Errorf("Expected JTI %s, got %s", issued.JTI, claims.ID)
	}
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	svc := newTestService(time.Hour)

	refresh, err := svc.GenerateRefreshToken(1, "OnDQ")
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}

	if _, err := svc.ValidateToken(refresh.Token, models.TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("Expected ErrWrongTokenType, got %v", err)
	}
	if _, err := svc.ValidateToken(refresh.Token, models.TokenTypeRefresh); err != nil {
		t.Errorf("Refresh token should validate as refresh: %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-1 * time.Hour)

	issued, err := svc.GenerateAccessToken(1, "OnDQ")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(issued.Token, models.TokenTypeAccess); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenFromOtherKey(t *testing.T) {
	issuer := newTestService(time.Hour)
	verifier := newTestService(time.Hour)

	issued, err := issuer.GenerateAccessToken(1, "OnDQ")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := verifier.ValidateToken(issued.Token, models.TokenTypeAccess); err == nil {
		t.Error("Token signed by another key should not validate")
	}
}

func TestValidateMalformedToken(t *testing.T) {
	svc := newTestService(time.Hour)
	if _, err := svc.ValidateToken("not.a.token", models.TokenTypeAccess); err == nil {
		t.Error("Malformed token should not validate")
	}
}

func TestLoadKeysFromPEM(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	secret := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	cfg := &config.JWTConfig{Secret: secret, Expiration: time.Hour, RefreshExpiration: time.Hour}
	first := NewService(cfg)
	second := NewService(cfg)

	issued, err := first.GenerateAccessToken(2, "admin")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := second.ValidateToken(issued.Token, models.TokenTypeAccess); err != nil {
		t.Errorf("Services sharing a PEM key should accept each other's tokens: %v", err)
	}
}

func TestHashAnswerAcceptsLongAnswers(t *testing.T) {
	svc := newTestService(time.Hour)

	answer := strings.Repeat("x", 80)
	hash, err := svc.HashAnswer(answer)
	if err != nil {
		t.Fatalf("Failed to hash an 80 byte answer: %v", err)
	}
	if err := svc.VerifyAnswer(hash, answer); err != nil {
		t.Errorf("Should verify the same answer, got error: %v", err)
	}
	// differs only after bcrypt's 72 byte cutoff
	if err := svc.VerifyAnswer(hash, strings.Repeat("x", 79)+"y"); err == nil {
		t.Error("Should reject an answer that differs after byte 72")
	}
}

func TestGeneratedKeyWithEscapedNewlines(t *testing.T) {
	key, err := GenerateSigningKeyPEM()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	oneLine := strings.ReplaceAll(string(key), "\n", `\n`)

	first := NewService(&config.JWTConfig{Secret: string(key), Expiration: time.Hour, RefreshExpiration: time.Hour})
	second := NewService(&config.JWTConfig{Secret: oneLine, Expiration: time.Hour, RefreshExpiration: time.Hour})

	issued, err := first.GenerateAccessToken(2, "admin")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := second.ValidateToken(issued.Token, models.TokenTypeAccess); err != nil {
		t.Errorf("A single-line secret should load the same key: %v", err)
	}
}

func TestGenerateInitialPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pw, err := GenerateInitialPassword(10)
		if err != nil {
			t.Fatalf("GenerateInitialPassword failed: %v", err)
		}
		if len(pw) != 10 {
			t.Errorf("Expected 10 characters, got %d", len(pw))
		}
		for _, r := range pw {
			if !strings.ContainsRune(initialPasswordAlphabet, r) {
				t.Errorf("Unexpected character %q in %s", r, pw)
			}
		}
		seen[pw] = true
	}
	if len(seen) < 2 {
		t.Error("Initial passwords should be random")
	}
}
