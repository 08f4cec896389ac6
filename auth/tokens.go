package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokens issues password reset tokens. A token is an HS256 JWT naming
// the user, so a leaked database row alone cannot mint new ones. Validity is
// still decided by the stored token and expiry on the user record.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a new token for userID and the time it expires.
func (t *ResetTokens) Issue(userID uint, now time.Time) (string, time.Time, error) {
	expires := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.NewString(), // Two tokens issued in the same second still differ
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign reset token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature and returns the user id the token was issued for.
// Expiry is not checked here; the stored expiry is authoritative.
func (t *ResetTokens) Verify(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return 0, fmt.Errorf("parse reset token: %w", err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("reset token subject: %w", err)
	}
	return uint(id), nil
}
