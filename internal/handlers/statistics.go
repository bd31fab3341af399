package handlers

import (
	"net/http"

	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
}

func NewStatisticsHandler(statisticsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// Submissions returns per-status submission counts
// GET /api/v1/stats/submissions
func (h *StatisticsHandler) Submissions(c *gin.Context) {
	stats, err := h.statisticsService.SubmissionStatistics()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatusGraph returns the percentage per status, optionally for one year
// GET /api/v1/stats/status-graph?year=2026
func (h *StatisticsHandler) StatusGraph(c *gin.Context) {
	graph, err := h.statisticsService.StatusGraph(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"graph": graph})
}

// Services returns application counts per category
// GET /api/v1/stats/services?year=2026
func (h *StatisticsHandler) Services(c *gin.Context) {
	stats, err := h.statisticsService.ServiceStatistics(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// Dashboard returns the admin landing numbers
// GET /api/v1/stats/dashboard
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statisticsService.Dashboard()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RegisteredUsers returns monthly registration buckets for a year
// GET /api/v1/stats/registered-users?year=2026
func (h *StatisticsHandler) RegisteredUsers(c *gin.Context) {
	graph, err := h.statisticsService.RegisteredUsers(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, graph)
}

// UserTypes splits the user base into company and individual accounts
// GET /api/v1/stats/user-types
func (h *StatisticsHandler) UserTypes(c *gin.Context) {
	counts, err := h.statisticsService.UserTypes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
