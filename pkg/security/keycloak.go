package security

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserKey is the gin context key holding the caller's user id.
const UserKey = "user"

// KeycloakClaims is the subset of a Keycloak access token the API reads.
type KeycloakClaims struct {
	Azp               string `json:"azp"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

// NewJWKSKeyfunc fetches the realm signing keys and keeps them refreshed
func NewJWKSKeyfunc(jwksURL string) (jwt.Keyfunc, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshTimeout:   10 * time.Second,
		RefreshRateLimit: time.Minute * 5,
		RefreshErrorHandler: func(err error) {
			log.Printf("Error refreshing JWKS: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}
	return jwks.Keyfunc, nil
}

// AuthMiddleware validates Keycloak bearer tokens issued to clientID and
// stores the token subject as the caller's user id.
func AuthMiddleware(keys jwt.Keyfunc, clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims := &KeycloakClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, keys)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Invalid token: %v", err)})
			return
		}

		switch {
		case claims.Azp != clientID:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid audience"})
			return
		case claims.Subject == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			return
		}

		c.Set(UserKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", errors.New("invalid authorization header format")
	}
	return token, nil
}

// UserID returns the authenticated caller, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserKey)
}
