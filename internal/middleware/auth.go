package middleware

import (
	"errors"
	"strings"

	"github.com/Wahidu1/projects-tech-foring/internal/constants"
	apierrors "github.com/Wahidu1/projects-tech-foring/internal/errors"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves an access token to the caller.
type Authenticator interface {
	Authenticate(accessToken string) (policy.Identity, *models.User, error)
}

// RequireAuth resolves the bearer token on every request and stores the
// caller identity in the context. Any failure aborts with 401.
func RequireAuth(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthenticated(c, "")
			return
		}

		identity, _, err := auth.Authenticate(raw)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				log.Error("failed to authenticate request", zap.Error(err))
				apierrors.InternalError(c, "")
				return
			}
			log.Debug("rejected bearer token", zap.Error(err))
			apierrors.Unauthenticated(c, "")
			return
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the current caller from context
func GetIdentity(c *gin.Context) (policy.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return policy.Identity{}, false
	}

	identity, ok := value.(policy.Identity)
	if !ok || identity.UserID == 0 {
		return policy.Identity{}, false
	}
	return identity, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.AuthorizationScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}
