package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// NewToken builds a bearer [oauth2.Token] for the pair, with Expiry taken from the access token's "exp" claim.
func NewToken(access, refresh string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       Expiry(access),
	}
}

// Expiry returns the unverified "exp" claim of a JWT access token, or the zero time.
//
// The signature is not checked; the server remains the authority on validity.
func Expiry(access string) time.Time {
	if access == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Subject returns the unverified "sub" claim of a JWT access token.
func Subject(access string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
