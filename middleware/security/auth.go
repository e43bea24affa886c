package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GitSid-glitch/cobuild/tools/errs"
	toolsec "github.com/GitSid-glitch/cobuild/tools/security"
)

// context key read by downstream handlers
const CtxUserIDKey = "authUserID"

type Options struct {
	JWT toolsec.Options
}

// Middleware verifies "Authorization: Bearer <jwt>" and stores the
// subject user id in the gin context.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid.WithDetail("missing bearer token"))
			return
		}
		userID, err := toolsec.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid.WithDetail(err.Error()))
			return
		}
		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// UserID reads the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserIDKey)
	s, _ := v.(string)
	return s
}

func bearer(authz string) string {
	authz = strings.TrimSpace(authz)
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
