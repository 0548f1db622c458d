package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// ListSubjects 获取农场的跟踪对象列表
func (h *Handler) ListSubjects(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm ID"})
		return
	}

	subjects, err := h.subjectRepo.ListByFarm(c.Request.Context(), farmID)
	if err != nil {
		h.logger.Error("Failed to list subjects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subjects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subjects})
}

// GetSubject 获取对象详情及最新位置
func (h *Handler) GetSubject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	subject, err := h.subjectRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	resp := gin.H{"data": subject}
	if latest, err := h.reportRepo.LatestBySubject(c.Request.Context(), id); err == nil {
		resp["latest_position"] = latest
	}
	if count, err := h.reportRepo.CountBySubject(c.Request.Context(), id); err == nil {
		resp["report_count"] = count
	}

	c.JSON(http.StatusOK, resp)
}

// createSubjectRequest 创建对象请求
type createSubjectRequest struct {
	Name              string `json:"name" binding:"required"`
	Kind              string `json:"kind" binding:"required"`
	Imei              string `json:"imei"`
	AttendanceEnabled bool   `json:"attendance_enabled"`
	ZoneID            *int64 `json:"zone_id"`
}

// CreateSubject 创建跟踪对象
func (h *Handler) CreateSubject(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm ID"})
		return
	}

	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject payload"})
		return
	}

	switch req.Kind {
	case models.SubjectTractor, models.SubjectLabour, models.SubjectUser:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject kind"})
		return
	}

	// 启用考勤必须绑定地块
	if req.AttendanceEnabled && req.ZoneID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attendance requires a zone"})
		return
	}

	subject := &models.Subject{
		FarmID:            farmID,
		Name:              req.Name,
		Kind:              req.Kind,
		Imei:              req.Imei,
		AttendanceEnabled: req.AttendanceEnabled,
		ZoneID:            req.ZoneID,
	}
	if err := h.subjectRepo.Create(c.Request.Context(), subject); err != nil {
		h.logger.Error("Failed to create subject", zap.Error(err), zap.Int64("farm_id", farmID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": subject})
}
