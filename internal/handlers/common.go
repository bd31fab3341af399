package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

// errStatus maps service errors onto HTTP codes: rejected input is 400,
// lookups that miss are 404, everything else is a 500.
func errStatus(err error) int {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errStatus(err), gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}
