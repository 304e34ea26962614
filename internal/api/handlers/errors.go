package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waseem196/down-fb/internal/utils"
)

func errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, gin.H{
		"error":      err,
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// respondError renders user-facing errors as they are and hides everything else.
func respondError(c *gin.Context, err error, logMessage string) {
	if appErr, ok := utils.AsAppError(err); ok {
		errorResponse(c, appErr)
		return
	}
	utils.LogError(c.Request.Context(), logMessage, err)
	errorResponse(c, utils.NewInternalError())
}
