package matching

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authorization string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// TokenClaims decodes the claims of a JWT without verifying its signature.
// Mocks only care about what a client sends.
func TokenClaims(token string) (map[string]any, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("invalid bearer token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid bearer token: unexpected claims type %T", parsed.Claims)
	}
	return claims, nil
}
