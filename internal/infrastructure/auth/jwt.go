package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// APIClaims is the token payload for analytics API consumers.
// tokens are issued out of band (ops tooling); the service only validates.
type APIClaims struct {
	jwt.RegisteredClaims

	// role is the consumer's role ("admin", "reader")
	Role string `json:"role,omitempty"`

	// chat_ids restricts the consumer to specific chats. empty = all.
	ChatIDs []int64 `json:"chat_ids,omitempty"`
}

// ConsumerID returns the subject claim.
func (c *APIClaims) ConsumerID() string {
	return c.Subject
}

// IsAdmin returns true for tokens with the admin role.
func (c *APIClaims) IsAdmin() bool {
	return c.Role == "admin"
}

// CanAccessChat reports whether the token may read the given chat.
func (c *APIClaims) CanAccessChat(chatID int64) bool {
	if len(c.ChatIDs) == 0 {
		return true
	}
	for _, id := range c.ChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// JWTValidator validates API bearer tokens.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a new validator with the signing secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
	}
}

// common jwt validation errors
var (
	ErrMissingToken     = errors.New("missing authorization token")
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// ValidateToken parses and validates a bearer token.
// returns the claims if valid, or an error if validation fails.
func (v *JWTValidator) ValidateToken(tokenString string) (*APIClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	// strip "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	tokenString = strings.TrimSpace(tokenString)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &APIClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// validate the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		// check for specific jwt errors
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// validate essential claims
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidClaims)
	}

	// check expiration manually as extra safety
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header value.
func ExtractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	// handle "Bearer <token>" format
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}
