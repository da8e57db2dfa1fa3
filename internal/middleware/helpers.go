// internal/middleware/helpers.go
package middleware

import (
	"billgate-service/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GetWorkspaceID gets the acting workspace from context
func GetWorkspaceID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("workspace_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetWorkspaceID gets the acting workspace from context or panics
func MustGetWorkspaceID(c *gin.Context) int64 {
	id, exists := GetWorkspaceID(c)
	if !exists {
		panic("workspace_id not found in context")
	}
	return id
}

// GetPayer builds the payer identity from the authenticated user
func GetPayer(c *gin.Context) billing.Payer {
	return billing.Payer{
		Email: c.GetString("user_email"),
		Name:  c.GetString("user_name"),
	}
}
