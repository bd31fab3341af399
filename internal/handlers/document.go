package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"
	"AE-VISA/internal/storage"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	storageClient   storage.Client
}

func NewDocumentHandler(documentService *services.DocumentService, storageClient storage.Client) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, storageClient: storageClient}
}

// Upload stores a multipart file and records it as a document for the caller
// POST /upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectName := storage.ObjectName(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	result, err := h.storageClient.UploadFile(c.Request.Context(), file, objectName, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	document, err := h.documentService.Create(middleware.UserID(c), services.DocumentInput{
		Title:       c.PostForm("title"),
		FileName:    fileHeader.Filename,
		FileType:    contentType,
		FilePath:    result.PublicURL,
		Description: c.PostForm("description"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document, "upload": result})
}

// List pages through documents
// GET /api/v1/documents?limit=20&offset=0
func (h *DocumentHandler) List(c *gin.Context) {
	documents, err := h.documentService.Documents(queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// Get returns one document
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	document, err := h.documentService.DocumentByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document})
}

// Update edits document metadata
// PUT /api/v1/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	var input services.UpdateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	document, err := h.documentService.Update(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document})
}

// Delete soft-deletes a document record
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.Delete(middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
