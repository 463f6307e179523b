package response

import (
	"errors"
	"net/http"

	"resapi/dao/model"
	"resapi/logutils"

	"github.com/gin-gonic/gin"
)

// Success sends a 200 response with the serialized record(s).
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the created record.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"detail": msg})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
}

// Error maps a domain error to its HTTP status class. Anything outside
// the taxonomy is a server fault and is not leaked to the caller.
func Error(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	var quotaErr *model.QuotaExceededError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, validationErr.Fields)
	case errors.As(err, &quotaErr):
		Forbidden(c, quotaErr.Error())
	case errors.Is(err, model.ErrNotFound):
		NotFound(c)
	default:
		logutils.Log.WithField("path", c.FullPath()).Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}
