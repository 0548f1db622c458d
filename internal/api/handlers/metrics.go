package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// parseTimeBound 解析 RFC3339 时间参数, 缺省返回零值
func parseTimeBound(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GetSubjectMetrics 对象全程运动指标
// 可选参数: from/to (RFC3339, 含端点), zone_id (只统计围栏内上报)
func (h *Handler) GetSubjectMetrics(c *gin.Context) {
	subjectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	from, ok := parseTimeBound(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from time"})
		return
	}
	to, ok := parseTimeBound(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to time"})
		return
	}

	var zoneID *int64
	if raw := c.Query("zone_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
			return
		}
		zoneID = &id
	}

	result, err := h.metrics.SubjectMetrics(c.Request.Context(), subjectID, from, to, zoneID)
	if err != nil {
		h.logger.Error("Failed to compute subject metrics", zap.Error(err), zap.Int64("subject_id", subjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetZoneMetrics 对象在地块围栏内的运动指标
// 必选参数: subject_id; 可选: from/to
func (h *Handler) GetZoneMetrics(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	subjectID, err := strconv.ParseInt(c.Query("subject_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	from, ok := parseTimeBound(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from time"})
		return
	}
	to, ok := parseTimeBound(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to time"})
		return
	}

	result, err := h.metrics.ZoneMetrics(c.Request.Context(), subjectID, zoneID, from, to)
	if err != nil {
		h.logger.Error("Failed to compute zone metrics", zap.Error(err),
			zap.Int64("zone_id", zoneID), zap.Int64("subject_id", subjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
