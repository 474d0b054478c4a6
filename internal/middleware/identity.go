package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/storeradar/radar-service/internal/preference"
)

const identityKey = "identity"

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// Enabled reports whether tokens are verified.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// Identity resolves an optional bearer token into a preference.Identity.
// Requests without a token proceed anonymously. A token that fails
// verification is rejected with 401. When no secret is configured every
// request is anonymous.
func Identity(cfg AuthConfig) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || !cfg.Enabled() {
			c.Set(identityKey, preference.Identity{})
			c.Next()
			return
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			status := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				status = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": status})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(identityKey, preference.Identity{UserID: claims.Subject, Token: raw})
		c.Next()
	}
}

// GetIdentity returns the identity resolved by Identity, or an anonymous one.
func GetIdentity(c *gin.Context) preference.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(preference.Identity); ok {
			return id
		}
	}
	return preference.Identity{}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
