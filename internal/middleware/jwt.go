package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soalgen/soalgen/internal/pkg/errcode"
	"github.com/soalgen/soalgen/internal/pkg/jwt"
	"github.com/soalgen/soalgen/internal/pkg/response"
)

const ContextClientKey = "client"

// JWTAuth guards the API with a bearer token. An empty secret disables
// the check so local setups can run open.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if claims.Subject != "" {
			c.Set(ContextClientKey, claims.Subject)
		}
		c.Next()
	}
}
