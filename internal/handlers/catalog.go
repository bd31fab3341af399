package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListServices returns all services with submission rollups, optionally
// filtered by keyword across service/category/visa titles
// GET /api/v1/services?search=golden
func (h *CatalogHandler) ListServices(c *gin.Context) {
	overviews, err := h.catalogService.Services(c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": overviews})
}

// GetService returns one service with its category tree
// GET /api/v1/services/:id
func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.catalogService.ServiceByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service})
}

// CreateService adds a service
// POST /api/v1/services
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var input services.CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.catalogService.CreateService(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": service})
}

// UpdateService applies a partial update
// PUT /api/v1/services/:id
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var input services.UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.catalogService.UpdateService(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service})
}

// DeleteService soft-deletes a service
// DELETE /api/v1/services/:id
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.DeleteService(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListCategories returns categories, optionally scoped to a service
// GET /api/v1/categories?service_id=...
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Query("service_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns one category; a search keyword narrows its visa list
// GET /api/v1/categories/:id?search=tourist
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalogService.CategoryByID(c.Param("id"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory adds a category under a service
// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var input services.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalogService.CreateCategory(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory applies a partial update
// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var input services.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalogService.UpdateCategory(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory soft-deletes a category
// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateCategoryAttribute edits a category's name/value pair
// PUT /api/v1/category-attributes/:id
func (h *CatalogHandler) UpdateCategoryAttribute(c *gin.Context) {
	var input services.UpdateCategoryAttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attr, err := h.catalogService.UpdateCategoryAttribute(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attr})
}

// ListVisas returns visas, optionally filtered by title
// GET /api/v1/visas?title=golden
func (h *CatalogHandler) ListVisas(c *gin.Context) {
	visas, err := h.catalogService.Visas(c.Query("title"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visas": visas})
}

// GetVisa returns one visa with its form attributes in presentation order
// GET /api/v1/visas/:id
func (h *CatalogHandler) GetVisa(c *gin.Context) {
	visa, err := h.catalogService.VisaByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visa": visa})
}

// CreateVisa adds a visa under a category
// POST /api/v1/visas
func (h *CatalogHandler) CreateVisa(c *gin.Context) {
	var input services.CreateVisaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visa, err := h.catalogService.CreateVisa(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"visa": visa})
}

// UpdateVisa applies a partial update
// PUT /api/v1/visas/:id
func (h *CatalogHandler) UpdateVisa(c *gin.Context) {
	var input services.UpdateVisaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visa, err := h.catalogService.UpdateVisa(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visa": visa})
}

// DeleteVisa soft-deletes a visa
// DELETE /api/v1/visas/:id
func (h *CatalogHandler) DeleteVisa(c *gin.Context) {
	if err := h.catalogService.DeleteVisa(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
