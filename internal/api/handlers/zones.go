package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// ListZones 获取农场的地块列表
func (h *Handler) ListZones(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm ID"})
		return
	}

	zones, err := h.zoneRepo.ListByFarm(c.Request.Context(), farmID)
	if err != nil {
		h.logger.Error("Failed to list zones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list zones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": zones})
}

// createZoneRequest 创建地块请求
type createZoneRequest struct {
	Name     string          `json:"name" binding:"required"`
	Boundary json.RawMessage `json:"boundary" binding:"required"`
}

// CreateZone 创建地块
// boundary 为 [[lon,lat],...] 顶点数组, 至少三个顶点
func (h *Handler) CreateZone(c *gin.Context) {
	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm ID"})
		return
	}

	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone payload"})
		return
	}

	boundary, err := geo.ParsePolygon(req.Boundary)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid boundary"})
		return
	}
	if !boundary.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Boundary needs at least 3 vertices"})
		return
	}

	zone := &models.Zone{
		FarmID:   farmID,
		Name:     req.Name,
		Boundary: boundary,
	}
	if err := h.zoneRepo.Create(c.Request.Context(), zone); err != nil {
		h.logger.Error("Failed to create zone", zap.Error(err), zap.Int64("farm_id", farmID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create zone"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": zone})
}

// GetActiveSubjects 获取地块内活跃对象
// 可选参数 window (如 "10m"), 缺省用配置的时间窗
func (h *Handler) GetActiveSubjects(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	window := h.activeWin
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window"})
			return
		}
		window = d
	}

	zone, err := h.zoneRepo.GetByID(c.Request.Context(), zoneID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return
	}

	subjects, err := h.active.Active(c.Request.Context(), zone, window)
	if err != nil {
		h.logger.Error("Failed to get active subjects", zap.Error(err), zap.Int64("zone_id", zoneID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get active subjects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subjects})
}

// ClearActiveCache 显式失效地块的活跃对象缓存
func (h *Handler) ClearActiveCache(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	h.active.ClearCache(zoneID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
