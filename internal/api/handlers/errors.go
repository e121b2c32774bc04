package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/pkg/errors"
)

// respondError writes the JSON error for err. Unexpected errors are logged and reported as 500.
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		validation *errors.ErrValidation
		invalid    *errors.ErrInvalidInput
		empty      *errors.ErrEmptyResult
		notFound   *errors.ErrNotFound
		conflict   *errors.ErrConflict
	)
	switch {
	case stderrors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case stderrors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case stderrors.As(err, &empty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": empty.Error(), "order_count": empty.OrderCount})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
