package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/repository"
	"github.com/Pistatapp/fieldgazer/internal/service"
	"github.com/Pistatapp/fieldgazer/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger      *zap.Logger
	subjectRepo *repository.SubjectRepository
	zoneRepo    *repository.ZoneRepository
	reportRepo  *repository.ReportRepository
	sessionRepo *repository.AttendanceRepository
	telemetry   *service.TelemetryService
	metrics     *service.MetricsService
	active      *service.ActiveIndex
	activeWin   time.Duration // 活跃对象查询的默认时间窗
	wsHub       *ws.Hub
	upgrader    websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	subjectRepo *repository.SubjectRepository,
	zoneRepo *repository.ZoneRepository,
	reportRepo *repository.ReportRepository,
	sessionRepo *repository.AttendanceRepository,
	telemetry *service.TelemetryService,
	metrics *service.MetricsService,
	active *service.ActiveIndex,
	activeWindow time.Duration,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:      logger,
		subjectRepo: subjectRepo,
		zoneRepo:    zoneRepo,
		reportRepo:  reportRepo,
		sessionRepo: sessionRepo,
		telemetry:   telemetry,
		metrics:     metrics,
		active:      active,
		activeWin:   activeWindow,
		wsHub:       wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 位置上报接入
		api.POST("/reports", h.IngestReports)

		// 对象
		api.GET("/farms/:id/subjects", h.ListSubjects)
		api.POST("/farms/:id/subjects", h.CreateSubject)
		api.GET("/subjects/:id", h.GetSubject)
		api.GET("/subjects/:id/metrics", h.GetSubjectMetrics)
		api.GET("/subjects/:id/sessions", h.ListSessions)

		// 地块
		api.GET("/farms/:id/zones", h.ListZones)
		api.POST("/farms/:id/zones", h.CreateZone)
		api.GET("/zones/:id/metrics", h.GetZoneMetrics)
		api.GET("/zones/:id/active", h.GetActiveSubjects)
		api.DELETE("/zones/:id/active-cache", h.ClearActiveCache)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
