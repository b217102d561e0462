package auth

import "github.com/gin-gonic/gin"

// GetMemberID returns the authenticated member's ID or empty string.
func GetMemberID(c *gin.Context) string {
	return getString(c, "memberID")
}

// GetMemberEmail returns the authenticated member's email or empty string.
func GetMemberEmail(c *gin.Context) string {
	return getString(c, "memberEmail")
}

// GetMemberTier returns the authenticated member's tier or empty string.
func GetMemberTier(c *gin.Context) string {
	return getString(c, "memberTier")
}

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
