package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/model"
	"gemcanvas/internal/transport/http/response"
)

type KnowledgeHandler struct {
	studio *app.Studio
}

// SaveKnowledgeBaseRequest takes the URLs either as a list or as
// newline-separated text.
type SaveKnowledgeBaseRequest struct {
	Name     string   `json:"name" binding:"required,max=128"`
	URLs     []string `json:"urls"`
	URLsText string   `json:"urlsText"`
}

func NewKnowledgeHandler(studio *app.Studio) *KnowledgeHandler {
	return &KnowledgeHandler{studio: studio}
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	response.OK(c, h.studio.KnowledgeBases().List())
}

func (h *KnowledgeHandler) Create(c *gin.Context) {
	h.save(c, "")
}

func (h *KnowledgeHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.studio.KnowledgeBases().Resolve(id); !ok {
		writeAppError(c, app.ErrKnowledgeNotFound, "")
		return
	}
	h.save(c, id)
}

func (h *KnowledgeHandler) save(c *gin.Context, id string) {
	var req SaveKnowledgeBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	var (
		group model.KnowledgeBaseGroup
		err   error
	)
	if req.URLsText != "" {
		group, err = h.studio.SaveKnowledgeBaseFromText(c.Request.Context(), id, req.Name, req.URLsText)
	} else {
		group, err = h.studio.SaveKnowledgeBase(c.Request.Context(), model.KnowledgeBaseGroup{ID: id, Name: req.Name, URLs: req.URLs})
	}
	if err != nil {
		writeAppError(c, err, "save knowledge base failed")
		return
	}
	response.OK(c, group)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.studio.DeleteKnowledgeBase(c.Request.Context(), id, confirmerFor(c)); err != nil {
		writeAppError(c, err, "delete knowledge base failed")
		return
	}
	response.OK(c, gin.H{"id": id, "deleted": true})
}
