package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reparto/backend/internal/infrastructure/config"
	"github.com/reparto/backend/internal/infrastructure/persistence"
	"github.com/reparto/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	cfg       *config.Config
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg *config.Config, db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		cfg:       cfg,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health handles GET /health. Degraded database connectivity reports 503
// so a load balancer stops routing here.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string   `json:"name"`
	Env       string   `json:"env"`
	GoVersion string   `json:"go_version"`
	Uptime    string   `json:"uptime"`
	Zones     []string `json:"zones"`
}

// GetSystemInfo handles GET /system/info. Zones feed the order creation
// form in the client.
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.cfg.App.Name,
		Env:       h.cfg.App.Env,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Zones:     h.cfg.App.Zones,
	}
	h.Success(c, info)
}
