package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/apperr"
)

// Every response uses the same envelope: {status, message, data} on
// success, {status, message, details} on failure.

func respondSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// respondError is the single conversion point from service errors to HTTP.
// Anything without an apperr status is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	code := apperr.Status(err)
	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{
		"status":  "error",
		"message": apperr.PublicMessage(err),
	})
}

// respondValidationError reports a body/query binding failure.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request payload",
		"details": err.Error(),
	})
}
