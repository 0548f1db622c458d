package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/service"
)

// IngestReports 接收一批位置上报
// 载荷为规范化 JSON 数组, 也兼容单条对象; 厂商私有报文的解析在接入侧完成
func (h *Handler) IngestReports(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	var batch []service.IngestReport
	if err := json.Unmarshal(body, &batch); err != nil {
		var one service.IngestReport
		if err := json.Unmarshal(body, &one); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report payload"})
			return
		}
		batch = []service.IngestReport{one}
	}

	accepted, err := h.telemetry.IngestBatch(c.Request.Context(), batch)
	if err != nil {
		h.logger.Error("Failed to ingest reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": len(batch),
		"accepted": accepted,
	})
}
