package middleware

import (
	"errors"
	"net/http"

	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			var details interface{}
			if len(appErr.Fields) > 0 {
				details = appErr.Fields
			}
			response.Error(c, appErr.Code, appErr.Message, details)
			return
		}

		// Internal details stay in the server log
		logger.Log.Error("Internal Server Error",
			"error", err,
			"path", c.FullPath(),
			"request_id", GetRequestID(c),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
