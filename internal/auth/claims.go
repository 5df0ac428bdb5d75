package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned for ID tokens past their exp claim
var ErrTokenExpired = errors.New("id token expired")

// ParseIDToken decodes the claims of an identity-provider ID token.
// The signature is not verified, so the result only gates this client.
// Servers accepting bearer tokens use IdentityClient.VerifyIDToken.
func ParseIDToken(token string, now time.Time) (*User, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token: %w", err)
	}

	user := &User{
		UID:           stringClaim(claims, "user_id"),
		Email:         stringClaim(claims, "email"),
		DisplayName:   stringClaim(claims, "name"),
		EmailVerified: boolClaim(claims, "email_verified"),
	}
	if user.UID == "" {
		user.UID = stringClaim(claims, "sub")
	}
	if user.UID == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		user.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return user, ErrTokenExpired
		}
	}

	return user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func boolClaim(claims jwt.MapClaims, key string) bool {
	v, _ := claims[key].(bool)
	return v
}
