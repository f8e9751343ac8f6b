package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIntQuery returns the named query parameter as an int, falling
// back to def when absent or malformed
func parseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
