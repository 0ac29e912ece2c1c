package middleware

import (
	"strings"

	"github.com/dimitrije/gather-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

type TokenValidator interface {
	ValidateAccessToken(token string) (*services.Claims, error)
}

// Auth requires a bearer JWT. Browsers opening an event stream cannot set
// headers, so an access_token query parameter is accepted as well.
func Auth(validator TokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, msg := bearerToken(c)
		if token == "" {
			c.Unauthorized(msg)
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		c.Next()
	}
}

func bearerToken(c *drift.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.QueryParam("access_token"); t != "" {
			return t, ""
		}
		return "", "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", "invalid authorization header format"
	}
	return parts[1], ""
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
