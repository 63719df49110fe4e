package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerScheme = "bearer"

// BearerToken extracts the credential from the Authorization header.
// present is false when the header is absent or blank. A present header
// that is not "Bearer <token>" yields an empty token with present true.
func BearerToken(c *gin.Context) (token string, present bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}

	scheme, credential, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", true
	}
	return strings.TrimSpace(credential), true
}
