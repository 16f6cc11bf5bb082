// Package auth issues and verifies the JWTs that carry a user's
// identity, role, and revocable session ID.
package auth

import (
	"errors"
	"strings"
	"time"

	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token or expired")
)

// Claims is the decoded identity a verified token carries. SessionID is
// the Redis key suffix checked on every request, so sign-out revokes the
// token before its expiry.
type Claims struct {
	UserID    string
	Role      models.Role
	SessionID string
}

// Auth signs and verifies tokens with a single HS256 secret.
type Auth struct {
	Secret []byte
}

func SetupAuth(secret string) Auth {
	return Auth{Secret: []byte(secret)}
}

// GenerateToken issues a signed token for the user and returns it along
// with the session ID embedded in it.
func (a Auth) GenerateToken(userID string, role models.Role) (token, sessionID string, err error) {
	if userID == "" || !role.Valid() {
		return "", "", errors.New("required inputs are missing to generate token")
	}

	sessionID = uuid.New().String()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"jti":     sessionID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(config.TokenTTL).Unix(),
		"iss":     "gripelogger-service",
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.Secret)
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// VerifyToken parses and validates a token string. It accepts both
// "Bearer <token>" and a bare token, since the websocket endpoint passes
// the token as a query parameter.
func (a Auth) VerifyToken(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		tokenString = strings.TrimSpace(tokenString[len("bearer "):])
	} else if strings.EqualFold(tokenString, "bearer") {
		// A bearer header whose token was all whitespace trims down to
		// the bare scheme word.
		tokenString = ""
	}
	if tokenString == "" {
		return Claims{}, ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	userID, _ := mc["user_id"].(string)
	roleStr, _ := mc["role"].(string)
	sessionID, _ := mc["jti"].(string)

	claims := Claims{UserID: userID, Role: models.Role(roleStr), SessionID: sessionID}
	if claims.UserID == "" || !claims.Role.Valid() || claims.SessionID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), config.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
