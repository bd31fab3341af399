package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/models"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit files answers and documents against a form
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var input services.SubmitFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.SubmitForm(middleware.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

// UpdateStatus applies any subset of status, payment link and reasons
// PUT /api/v1/submissions/:id/status
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	var input services.UpdateSubmissionStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.UpdateStatus(middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// Complete marks an application completed and pushes to the applicant
// POST /api/v1/applications/:id/complete
func (h *SubmissionHandler) Complete(c *gin.Context) {
	submission, err := h.submissionService.CompleteApplication(middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// List pages through submissions with status/service/date/search filters
// GET /api/v1/submissions?limit=20&offset=0
func (h *SubmissionHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	filter := &services.SubmissionFilter{
		Status:    models.FormStatus(c.Query("status")),
		ServiceID: c.Query("service_id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Search:    c.Query("search"),
	}

	page, err := h.submissionService.Submissions(limit, offset, filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMine returns the caller's submissions
// GET /api/v1/submissions/mine
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	submissions, err := h.submissionService.UserSubmissions(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// ListMinePending returns the caller's in-flight submissions
// GET /api/v1/submissions/mine/pending
func (h *SubmissionHandler) ListMinePending(c *gin.Context) {
	submissions, err := h.submissionService.UserPendingSubmissions(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// Get returns one submission with its relations
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.submissionService.SubmissionByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}
