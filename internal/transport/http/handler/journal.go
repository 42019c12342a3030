package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/model"
	"gemcanvas/internal/repository"
	"gemcanvas/internal/transport/http/response"
)

type JournalHandler struct {
	repo *repository.JournalRepository
}

func NewJournalHandler(repo *repository.JournalRepository) *JournalHandler {
	return &JournalHandler{repo: repo}
}

func (h *JournalHandler) List(c *gin.Context) {
	if h.repo == nil {
		response.OK(c, gin.H{"enabled": false, "entries": []model.JournalEntry{}})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.repo.ListRecent(c.Request.Context(), c.Query("gem_id"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list journal failed")
		return
	}
	response.OK(c, gin.H{"enabled": true, "entries": entries})
}
