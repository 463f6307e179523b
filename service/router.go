package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed,
		gin.H{"detail": "Method \"" + c.Request.Method + "\" not allowed."})
}

// NewRouter builds the full API surface under /api/v1. Init must have
// been called first.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.NoMethod(methodNotAllowed)

	api := r.Group("/api/v1", TokenAuth())
	RegisterAuth(api)
	RegisterUsers(api)
	RegisterQuotas(api)
	RegisterResources(api)
	return r
}
