package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "travelpartner/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "travelpartner-identity", "travelpartner")

	token, err := v.Issue(Identity{UID: "uid-1", Email: "asha@example.com", Name: "Asha"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	id, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "asha@example.com" || id.Name != "Asha" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "travelpartner-identity", "travelpartner")
	other := NewVerifier("ffffffffffffffffffffffffffffffff", "travelpartner-identity", "travelpartner")
	wrongAudience := NewVerifier(testSecret, "travelpartner-identity", "someone-else")

	expired, _ := v.Issue(Identity{UID: "uid-1"}, -time.Hour)
	foreign, _ := other.Issue(Identity{UID: "uid-1"}, time.Hour)
	misaddressed, _ := wrongAudience.Issue(Identity{UID: "uid-1"}, time.Hour)
	noSubject, _ := v.Issue(Identity{}, time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "uid-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":        "not.a.token",
		"expired":        expired,
		"wrong secret":   foreign,
		"wrong audience": misaddressed,
		"missing sub":    noSubject,
		"alg none":       noneAlg,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	if _, err := Require(context.Background()); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}

	ctx := WithIdentity(context.Background(), &Identity{UID: "uid-9"})
	id, err := Require(ctx)
	if err != nil || id.UID != "uid-9" {
		t.Errorf("Require() = %+v, %v", id, err)
	}
}
