package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/analytics"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// sessionView 会话及其生产率
type sessionView struct {
	models.AttendanceSession
	Productivity *float64 `json:"productivity"`
}

// ListSessions 分页获取对象的考勤会话
func (h *Handler) ListSessions(c *gin.Context) {
	subjectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	sessions, err := h.sessionRepo.ListBySubject(c.Request.Context(), subjectID, perPage, offset)
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	total, _ := h.sessionRepo.CountBySubject(c.Request.Context(), subjectID)

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			AttendanceSession: s,
			Productivity:      analytics.Productivity(s.InZoneSeconds, s.OutZoneSeconds),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": views,
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}
