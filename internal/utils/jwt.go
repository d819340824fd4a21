package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// SetSecret sets the signing secret for session and room tokens. Called once
// at startup with the loaded configuration.
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

// Claims represents session JWT claims. TokenIdentifier is the external
// identity provider's stable token for the user; UserID is our row id.
type Claims struct {
	UserID          string `json:"userId"`
	TokenIdentifier string `json:"tokenIdentifier"`
	Name            string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken generates a session JWT for a user
func GenerateToken(userID, tokenIdentifier, name string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour) // 24 hours

	claims := &Claims{
		UserID:          userID,
		TokenIdentifier: tokenIdentifier,
		Name:            name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken validates and parses a session JWT
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
