package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoomClaims is the payload of a call room access token. The media relay
// accepts the room id and admits the holder as UserID; every participant of
// an active call gets a token for the same RoomID.
type RoomClaims struct {
	RoomID         string `json:"roomId"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	jwt.RegisteredClaims
}

// GenerateRoomToken mints a short-lived access token admitting a user into
// a call room.
func GenerateRoomToken(roomID, conversationID, userID, userName string, ttl time.Duration) (string, error) {
	claims := &RoomClaims{
		RoomID:         roomID,
		ConversationID: conversationID,
		UserID:         userID,
		UserName:       userName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateRoomToken validates and parses a call room access token
func ValidateRoomToken(tokenString string) (*RoomClaims, error) {
	claims := &RoomClaims{}

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
