package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgerrors "store-api/pkg/errors"
	"store-api/pkg/logger"
	"store-api/pkg/security"
)

// ClaimsKey is the gin context key holding the verified *security.AccessClaims.
const ClaimsKey = "auth.claims"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	VerifyToken(raw string) (*security.AccessClaims, error)
}

// BearerAuth rejects requests without a valid bearer token.
func BearerAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			unauthorized(c, "not authenticated")
			return
		}

		claims, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			_, detail := pkgerrors.HTTPStatus(err)
			unauthorized(c, detail)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// Claims returns the claims stored by BearerAuth.
func Claims(c *gin.Context) (*security.AccessClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.AccessClaims)
	return claims, ok
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}
