package auth

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/form-service/internal/config"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

// Context keys set by Middleware
const (
	UserIDKey    = "user_id"
	UserNameKey  = "user_name"
	UserEmailKey = "user_email"
)

// Identity is the caller resolved from a bearer token
type Identity struct {
	ID    string
	Name  string
	Email string
}

// TokenParser verifies a JWT and returns its claims. casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

func NewCasdoorParser(cfg config.CasdoorConfig) TokenParser {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// Middleware resolves the caller when an Authorization header is present.
// Requests without one pass through as anonymous; a token that fails to verify is rejected.
func Middleware(parser TokenParser, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || parser == nil {
			c.Next()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		claims, err := parser.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Rejected bearer token", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		identity := identityFromClaims(claims)
		c.Set(UserIDKey, identity.ID)
		c.Set(UserNameKey, identity.Name)
		c.Set(UserEmailKey, identity.Email)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Middleware, or nil for anonymous callers.
func IdentityFrom(c *gin.Context) *Identity {
	id := c.GetString(UserIDKey)
	if id == "" {
		return nil
	}
	return &Identity{
		ID:    id,
		Name:  c.GetString(UserNameKey),
		Email: c.GetString(UserEmailKey),
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFromClaims(claims *casdoorsdk.Claims) Identity {
	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}
	id := claims.User.Id
	if id == "" {
		id = claims.User.Name
	}
	return Identity{ID: id, Name: name, Email: claims.User.Email}
}
