package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
)

// writeError maps domain errors onto the {"error": "..."} body the storefront reads.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Reason})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrOutOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Out of stock"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
