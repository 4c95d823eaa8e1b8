package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no token is present anywhere in the request.
	ErrNoToken = errors.New("no authentication token")
	// ErrInvalidToken is returned when a token is present but fails verification.
	ErrInvalidToken = errors.New("invalid authentication token")
)

// Verifier checks HMAC-signed admin tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ExtractToken looks for a token in the Authorization header (Bearer prefix
// or a raw token), then the access_token and adminToken cookies, then the
// token query parameter. The query parameter fallback exists for websocket
// clients, which cannot set headers.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		if len(parts) == 1 && len(parts[0]) > 10 {
			return parts[0]
		}
	}

	for _, name := range []string{"access_token", "adminToken"} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}

	return r.URL.Query().Get("token")
}

// VerifyRequest extracts and verifies the request's token and returns the
// principal carried in its claims.
func (v *Verifier) VerifyRequest(r *http.Request) (Principal, error) {
	tokenStr := ExtractToken(r)
	if tokenStr == "" {
		return Principal{}, ErrNoToken
	}
	return v.Verify(tokenStr)
}

// Verify parses and validates a token string.
func (v *Verifier) Verify(tokenStr string) (Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	var p Principal
	if s, ok := claims["userId"].(string); ok {
		p.UserID = s
	}
	if s, ok := claims["userType"].(string); ok {
		p.UserType = s
	}
	return p, nil
}
