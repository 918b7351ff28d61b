package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ammu0113/url-shortener/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

type AuthConfig struct {
	Secret string
	Issuer string
}

// Auth verifies the bearer token issued by the access control gate and stores its
// subject as the request principal.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	secret := []byte(cfg.Secret)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		c.Set(principalKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithAttrs(c.Request.Context(), slog.String("principal", claims.Subject)))
		c.Next()
	}
}

// Principal returns the authenticated subject, or "" on routes without Auth.
func Principal(c *gin.Context) string {
	return c.GetString(principalKey)
}
