// Package auth provides token issuance, password hashing, and the request
// middleware that gates authenticated and admin-only routes.
//
// TOKEN DESIGN:
// Tokens are signed JWTs (HS256). The signature is the whole point: an
// unsigned token — a bare base64 payload with an expiry field — can be
// forged by anyone who has ever seen one, simply by swapping the subject id
// and re-encoding. With HMAC-SHA256 over the header and payload, a token is
// only valid if it was produced with the server-held secret, so the subject
// id it carries can be trusted without a database lookup.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"userID","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long an issued token stays valid. After expiry the
// client must sign in again.
const tokenLifetime = 24 * time.Hour

// issuer is pinned on every token so tokens minted by other applications
// sharing a secret by accident are still rejected.
const issuer = "eventhub"

// TokenService signs and verifies bearer tokens.
//
// It holds the HMAC secret used for both operations. The secret should be
// at least 32 bytes of random data in production:
//
//	JWT_SECRET=$(openssl rand -hex 32)
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. jwt.RegisteredClaims provides the standard
// fields (Subject, IssuedAt, ExpiresAt, Issuer); the user id rides in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given user id, valid for 24 hours.
func (s *TokenService) Issue(userID string) (string, error) {
	return s.IssueWithDuration(userID, tokenLifetime)
}

// IssueWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired or short-lived tokens.
func (s *TokenService) IssueWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string, returning the user id from the
// "sub" claim.
//
// Checks performed (by the jwt library, under our options):
//   - Signature is valid against the server secret
//   - ExpiresAt is in the future
//   - Issuer matches "eventhub"
//   - Algorithm is HS256 — passing jwt.WithValidMethods prevents the
//     classic algorithm-confusion attack where a token claims "none"
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
