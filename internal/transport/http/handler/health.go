package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/bootstrap"
	"gemcanvas/internal/transport/http/response"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	allOK := true
	if h.app.DB != nil {
		status := h.checkDB(ctx)
		deps[h.app.Config.Store.Driver] = status
		allOK = allOK && status.OK
	}
	if h.app.Redis != nil {
		status := h.checkRedis(ctx)
		deps["redis"] = status
		allOK = allOK && status.OK
	}
	if h.app.MQConn != nil {
		status := h.checkRabbitMQ()
		deps["rabbitmq"] = status
		allOK = allOK && status.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": deps,
	})
}

// Status reports whether the application can serve Gems.
func (h *HealthHandler) Status(c *gin.Context) {
	data := gin.H{
		"app":             h.app.Config.App.Name,
		"provider":        h.app.Config.LLM.Provider,
		"model":           h.app.Config.LLM.Model,
		"store":           h.app.Config.Store.Driver,
		"auth_enabled":    h.app.Auth.Enabled(),
		"journal_enabled": h.app.JournalWorker != nil,
		"configured":      h.app.ConfigErr == nil,
		"canvas_state":    h.app.Studio.Canvas().State(),
	}
	if h.app.ConfigErr != nil {
		data["config_error"] = h.app.ConfigErr.Error()
	}
	response.OK(c, data)
}

func (h *HealthHandler) checkDB(ctx context.Context) dependencyStatus {
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
