package utils

import "github.com/gin-gonic/gin"

// Success writes body as-is with status 200
func Success(c *gin.Context, body interface{}) {
	c.JSON(200, body)
}

// Message writes {"message": msg} with status 200
func Message(c *gin.Context, msg string) {
	c.JSON(200, gin.H{
		"message": msg,
	})
}

// Error writes {"error": msg} with the given status
func Error(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error": msg,
	})
}
