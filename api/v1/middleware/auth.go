package middleware

import (
	"errors"

	"go_releasehub/internal/auth"
	"go_releasehub/internal/httpx"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenParser verifies bearer tokens
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// AuthRequired is a middleware that validates JWT token
func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) {
				httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			} else {
				httpx.FailErr(c, httpx.ErrUnauthorized(err.Error()))
			}
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		c.Set("uid", claims.UID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole aborts with 403 unless allowed(role) holds for the caller
func RequireRole(allowed func(role string) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(c.GetString("role")) {
			httpx.FailErr(c, httpx.ErrForbidden(message))
			c.Abort()
			return
		}
		c.Next()
	}
}
