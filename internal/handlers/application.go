package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Create files a direct visa application with its documents
// POST /api/v1/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var input services.CreateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := h.applicationService.Create(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": application})
}

// ListMine pages through the caller's applications
// GET /api/v1/applications?take=20&skip=0
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	applications, err := h.applicationService.UserApplications(
		middleware.UserID(c), queryInt(c, "take", 20), queryInt(c, "skip", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// Get returns one application
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	application, err := h.applicationService.ApplicationByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": application})
}

// Delete soft-deletes an application
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.applicationService.Delete(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
