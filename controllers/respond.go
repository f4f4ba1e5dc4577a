package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreport-be/apperrors"
)

// respondError maps a service error to its HTTP status. Internal detail is
// logged, not returned.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "Something went wrong"
	case apperrors.IsConflict(err):
		message = "temporary conflict, please retry"
	}
	c.JSON(status, gin.H{"error": message})
}
