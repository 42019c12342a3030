package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/transport/http/response"
)

type CanvasHandler struct {
	studio *app.Studio
}

type AcceptCanvasRequest struct {
	GemID    string `json:"gemId" binding:"required"`
	CanvasID string `json:"canvasId" binding:"required"`
}

func NewCanvasHandler(studio *app.Studio) *CanvasHandler {
	return &CanvasHandler{studio: studio}
}

func (h *CanvasHandler) Review(c *gin.Context) {
	pending, _ := h.studio.Canvas().Pending()
	response.OK(c, gin.H{
		"state":   h.studio.Canvas().State(),
		"pending": pending,
	})
}

func (h *CanvasHandler) Accept(c *gin.Context) {
	var req AcceptCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	gem, err := h.studio.AcceptCanvas(c.Request.Context(), req.GemID, req.CanvasID)
	if err != nil {
		writeAppError(c, err, "accept canvas failed")
		return
	}
	response.OK(c, gem)
}

func (h *CanvasHandler) Discard(c *gin.Context) {
	pending, err := h.studio.DiscardCanvas(c.Request.Context())
	if err != nil {
		writeAppError(c, err, "discard canvas failed")
		return
	}
	response.OK(c, gin.H{"discarded": pending.Canvas.ID})
}
