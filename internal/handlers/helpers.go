package handlers

import "github.com/gin-gonic/gin"

// fail — единый формат ошибки: {success:false, message, error?}.
func fail(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}

// accountIDFromCtx — id, положенный AuthMiddleware.
func accountIDFromCtx(c *gin.Context) (int, bool) {
	id, ok := c.Get("account_id")
	if !ok {
		return 0, false
	}
	n, ok := id.(int)
	return n, ok
}
