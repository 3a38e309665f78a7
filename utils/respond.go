// utils/respond.go
package utils

import "github.com/gin-gonic/gin"

// RespondWithError writes a JSON error body with the given status and aborts.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
