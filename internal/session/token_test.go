package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestIssuerMintAndVerify(t *testing.T) {
	iss := NewIssuer("test-secret", "staredown", time.Hour)

	tokenString, id, err := iss.Mint(time.Now())
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	claims := parseClaims(t, tokenString, "test-secret")
	if got := claims["jti"]; got != id {
		t.Fatalf("jti = %v, want %s", got, id)
	}
	if got := claims["iss"]; got != "staredown" {
		t.Fatalf("iss = %v, want staredown", got)
	}

	got, err := iss.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if got != id {
		t.Fatalf("verified id = %s, want %s", got, id)
	}
}

func TestIssuerVerifyRejectsForeignTokens(t *testing.T) {
	iss := NewIssuer("test-secret", "staredown", time.Hour)
	other := NewIssuer("other-secret", "staredown", time.Hour)

	tokenString, _, err := other.Mint(time.Now())
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := iss.Verify(tokenString); err == nil {
		t.Fatal("expected signature error")
	}

	wrongIssuer := NewIssuer("test-secret", "someone-else", time.Hour)
	tokenString, _, _ = wrongIssuer.Mint(time.Now())
	if _, err := iss.Verify(tokenString); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestIssuerVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer("test-secret", "staredown", time.Minute)
	tokenString, _, err := iss.Mint(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := iss.Verify(tokenString); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestIssuerRequiresConfig(t *testing.T) {
	if _, _, err := NewIssuer("", "staredown", time.Hour).Mint(time.Now()); err == nil {
		t.Fatal("expected error for missing secret")
	}
	var nilIssuer *Issuer
	if _, _, err := nilIssuer.Mint(time.Now()); err == nil {
		t.Fatal("expected error for nil issuer")
	}
}

func parseClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}
