package authUtils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"civicreport-be/models"
)

// GenerateToken mints a JWT carrying the account id and role.
func GenerateToken(userID string, role models.Role, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour * 72).Unix(), // Token expires in 72 hours
	})

	return token.SignedString([]byte(secret))
}

// ParseToken validates a JWT and returns the identity claims it carries.
func ParseToken(tokenString, secret string) (userID string, role models.Role, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", "", fmt.Errorf("token missing user_id claim")
	}
	role = models.RoleCitizen
	if r, ok := claims["role"].(string); ok && models.Role(r).Valid() {
		role = models.Role(r)
	}
	return id, role, nil
}
