package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/model"
	"gemcanvas/internal/render"
	"gemcanvas/internal/transport/http/response"
)

type GemHandler struct {
	studio *app.Studio
}

type CreateGemRequest struct {
	Name                 string `json:"name" binding:"required,max=128"`
	StudentName          string `json:"studentName" binding:"required,max=128"`
	SystemInstruction    string `json:"systemInstruction" binding:"required"`
	KnowledgeBaseGroupID string `json:"knowledgeBaseGroupId" binding:"max=64"`
}

// UpdateGemRequest leaves absent fields untouched. An empty
// knowledgeBaseGroupId unbinds the knowledge base.
type UpdateGemRequest struct {
	Name                 *string `json:"name" binding:"omitempty,max=128"`
	StudentName          *string `json:"studentName" binding:"omitempty,max=128"`
	SystemInstruction    *string `json:"systemInstruction"`
	KnowledgeBaseGroupID *string `json:"knowledgeBaseGroupId" binding:"omitempty,max=64"`
}

func NewGemHandler(studio *app.Studio) *GemHandler {
	return &GemHandler{studio: studio}
}

func (h *GemHandler) List(c *gin.Context) {
	response.OK(c, h.studio.Gems().List())
}

func (h *GemHandler) Create(c *gin.Context) {
	var req CreateGemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	gem, err := h.studio.CreateGem(c.Request.Context(), model.Persona{
		Name:                 req.Name,
		StudentName:          req.StudentName,
		SystemInstruction:    req.SystemInstruction,
		KnowledgeBaseGroupID: req.KnowledgeBaseGroupID,
	})
	if err != nil {
		writeAppError(c, err, "create gem failed")
		return
	}
	response.OK(c, gem)
}

func (h *GemHandler) Get(c *gin.Context) {
	gem := h.studio.Gems().Get(c.Param("id"))
	if gem == nil {
		writeAppError(c, app.ErrGemNotFound, "")
		return
	}
	response.OK(c, gem)
}

func (h *GemHandler) Update(c *gin.Context) {
	var req UpdateGemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	gem, err := h.studio.UpdateGem(c.Request.Context(), c.Param("id"), model.PersonaPatch{
		Name:                 req.Name,
		StudentName:          req.StudentName,
		SystemInstruction:    req.SystemInstruction,
		KnowledgeBaseGroupID: req.KnowledgeBaseGroupID,
	})
	if err != nil {
		writeAppError(c, err, "update gem failed")
		return
	}
	response.OK(c, gem)
}

func (h *GemHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.studio.DeleteGem(c.Request.Context(), id, confirmerFor(c)); err != nil {
		writeAppError(c, err, "delete gem failed")
		return
	}
	response.OK(c, gin.H{"id": id, "deleted": true})
}

func (h *GemHandler) Canvases(c *gin.Context) {
	gem := h.studio.Gems().Get(c.Param("id"))
	if gem == nil {
		writeAppError(c, app.ErrGemNotFound, "")
		return
	}
	response.OK(c, gem.Canvases)
}

// Feed lists every archived canvas across all Gems.
func (h *GemHandler) Feed(c *gin.Context) {
	response.OK(c, h.studio.Gems().Feed())
}

func (h *GemHandler) CanvasHTML(c *gin.Context) {
	gem := h.studio.Gems().Get(c.Param("id"))
	if gem == nil {
		writeAppError(c, app.ErrGemNotFound, "")
		return
	}
	canvasID := c.Param("canvasId")
	for _, canvas := range gem.Canvases {
		if canvas.ID != canvasID {
			continue
		}
		page, err := render.CanvasHTML(gem, canvas)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "render canvas failed")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}
	response.Error(c, http.StatusNotFound, response.CodeCanvasNotFound, "canvas not found")
}
