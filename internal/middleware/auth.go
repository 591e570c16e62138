package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"vim-audiosync/internal/config"
	"vim-audiosync/internal/models"
)

const (
	UserIDKey      = "user_id"
	AccessTokenKey = "access_token"

	// AccessTokenCookie is set by the login page after Supabase sign-in.
	AccessTokenCookie = "sb-access-token"
)

var (
	errMissingToken = errors.New("missing access token")
	errMissingSub   = errors.New("missing user id in token")
)

// AuthMiddleware rejects requests without a valid Supabase access token.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err == nil && tokenString == "" {
			tokenString = cookieToken(c)
		}
		if err != nil || tokenString == "" {
			if err == nil {
				err = errMissingToken
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
			return
		}

		userID, err := ParseToken(cfg.SupabaseJWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid token",
				Message: tokenErrorMessage(err),
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(AccessTokenKey, tokenString)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := bearerToken(c)
		if tokenString == "" {
			tokenString = cookieToken(c)
		}
		if tokenString != "" {
			if userID, err := ParseToken(cfg.SupabaseJWTSecret, tokenString); err == nil {
				c.Set(UserIDKey, userID)
				c.Set(AccessTokenKey, tokenString)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return normalizeToken(parts[1]), nil
}

func cookieToken(c *gin.Context) string {
	v, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return normalizeToken(v)
}

// normalizeToken undoes URL encoding some clients apply to the token.
func normalizeToken(raw string) string {
	tokenString := strings.TrimSpace(raw)
	if decoded, err := url.QueryUnescape(tokenString); err == nil {
		tokenString = decoded
	}
	return tokenString
}

// ParseToken verifies a Supabase HS256 access token and returns its subject.
func ParseToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", jwt.ErrSignatureInvalid
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errMissingSub
	}
	return sub, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid - check JWT secret"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	default:
		return err.Error()
	}
}
