package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-tools-service/internal/server/utils"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.uber.org/zap"
)

// HealthHandler answers the health routes by calling the health tool, so the
// HTTP endpoints and the tool report the same status.
type HealthHandler struct {
	kit       *tools.Toolkit
	logger    *zap.Logger
	startTime time.Time
}

func NewHealthHandler(kit *tools.Toolkit, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		kit:       kit,
		logger:    logger,
		startTime: time.Now(),
	}
}

// check runs the health tool and returns its status, or "" on failure.
func (h *HealthHandler) check(c *gin.Context) string {
	res, err := h.kit.Call(utils.GetContextFromGinContext(c), tools.HealthName, nil)
	if err != nil {
		h.logger.Error("Health tool rejected the health check", zap.Error(err))
		return ""
	}
	if !res.OK() {
		h.logger.Error("Health tool failed", zap.Error(res.Fault))
		return ""
	}
	if status, ok := res.Value.(*tools.HealthResponse); ok {
		return status.Status
	}
	return ""
}

func (h *HealthHandler) respond(c *gin.Context, status string, withTimestamp bool) {
	code := http.StatusOK
	if status == "" {
		code = http.StatusServiceUnavailable
		status = "unavailable"
	}

	resp := HealthResponse{
		Status: status,
		Uptime: time.Since(h.startTime).String(),
	}
	if withTimestamp {
		resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) Health(c *gin.Context) {
	h.respond(c, h.check(c), true)
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	h.respond(c, h.check(c), false)
}

// Readiness reports ready once every listed tool is registered and the health
// tool answers.
func (h *HealthHandler) Readiness(c *gin.Context) {
	for _, name := range []string{tools.WeatherName, tools.AirQualityName} {
		if _, ok := h.kit.Lookup(name); !ok {
			h.logger.Warn("Tool not registered", zap.String("tool", name))
			h.respond(c, "", false)
			return
		}
	}

	status := h.check(c)
	if status != "" {
		status = "ready"
	}
	h.respond(c, status, false)
}
