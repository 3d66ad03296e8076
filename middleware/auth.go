package middleware

import (
	"errors"
	"strings"

	"blog-cms/config"
	"blog-cms/helper"
	"blog-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const identityKey = "identity"

var HTTPHelper = &helper.HTTPHelper{}

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("authentication token required")

// parseToken reads the token from the auth cookie first, then from an
// "Authorization: Bearer" header.
func parseToken(c *gin.Context, conf config.JWTConfig) (*Claims, error) {
	tokenString, err := c.Cookie(conf.CookieName)
	if err != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return nil, errNoToken
		}
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return nil, errors.New("bearer token required")
		}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return conf.SecretKey(), nil
	})
	if err != nil {
		return nil, errors.New("invalid token: " + err.Error())
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// Authenticate resolves the caller identity when a token is present and
// always continues. Invalid tokens are treated as anonymous.
func Authenticate(conf config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c, conf)
		if err == nil {
			c.Set(identityKey, models.Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     models.UserRole(claims.Role),
			})
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401 before the handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAuthenticated() {
			HTTPHelper.SendUnauthorizedError(c, "login required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if !identity.IsAuthenticated() {
			HTTPHelper.SendUnauthorizedError(c, "login required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		for _, role := range roles {
			if identity.IsInRole(role) {
				c.Next()
				return
			}
		}

		HTTPHelper.SendForbiddenError(c, "insufficient permissions", HTTPHelper.EmptyJsonMap())
		c.Abort()
	}
}

// CurrentIdentity returns the caller set by Authenticate, or an anonymous identity.
func CurrentIdentity(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(models.Identity); ok {
			return identity
		}
	}
	return models.Identity{}
}
