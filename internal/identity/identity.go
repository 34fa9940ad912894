// Package identity resolves the current actor from a bearer token. The
// pipeline only ever consumes the resulting {id, role} pair; account
// management lives in the identity provider, not here.
package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const userContextKey = "current_user"

// Verifier turns a bearer token into a User.
type Verifier interface {
	Verify(token string) (*models.User, error)
}

// Config holds the Casdoor connection settings.
type Config struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

type casdoorVerifier struct {
	client *casdoorsdk.Client
}

// NewCasdoorVerifier returns a Verifier backed by a Casdoor deployment.
func NewCasdoorVerifier(cfg Config) Verifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &casdoorVerifier{client: client}
}

func (v *casdoorVerifier) Verify(token string) (*models.User, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role := models.RoleStudent
	if claims.User.Tag == string(models.RoleTeacher) {
		role = models.RoleTeacher
	}

	return &models.User{
		ID:   claims.User.Id,
		Name: claims.User.Name,
		Role: role,
	}, nil
}

// Middleware authenticates the request and stores the actor in the gin
// context.
func Middleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		user, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated actor, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
