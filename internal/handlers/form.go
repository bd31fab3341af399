package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// CreateForm materializes a form and its attribute tree for a category
// POST /api/v1/forms
func (h *FormHandler) CreateForm(c *gin.Context) {
	var input services.CreateFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := h.formService.CreateForm(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"form": form})
}

// GetForm returns a form with its ordered root attributes
// GET /api/v1/forms/:id
func (h *FormHandler) GetForm(c *gin.Context) {
	form, err := h.formService.FormByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// GetFormByVisa returns the form attached to a visa
// GET /api/v1/visas/:id/form
func (h *FormHandler) GetFormByVisa(c *gin.Context) {
	form, err := h.formService.FormByVisaID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// GetFormByCategory returns the form attached to a category
// GET /api/v1/categories/:id/form
func (h *FormHandler) GetFormByCategory(c *gin.Context) {
	form, err := h.formService.FormByCategoryID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// ListForms returns every form with ordered root attributes
// GET /api/v1/forms
func (h *FormHandler) ListForms(c *gin.Context) {
	forms, err := h.formService.Forms()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forms": forms})
}
