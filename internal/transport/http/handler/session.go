package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/model"
	"gemcanvas/internal/transport/http/response"
)

type SessionHandler struct {
	studio *app.Studio
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type sessionView struct {
	GemID   string           `json:"gemId"`
	State   app.SessionState `json:"state"`
	History []model.Message  `json:"history"`
}

func NewSessionHandler(studio *app.Studio) *SessionHandler {
	return &SessionHandler{studio: studio}
}

func viewOf(sess *app.Session) sessionView {
	return sessionView{GemID: sess.GemID(), State: sess.State(), History: sess.History()}
}

func (h *SessionHandler) Launch(c *gin.Context) {
	sess, err := h.studio.Launch(c.Param("id"))
	if err != nil {
		writeAppError(c, err, "launch session failed")
		return
	}
	response.OK(c, viewOf(sess))
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.studio.Session(c.Param("id"))
	if err != nil {
		writeAppError(c, err, "get session failed")
		return
	}
	response.OK(c, viewOf(sess))
}

func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	sess, err := h.studio.Session(c.Param("id"))
	if err != nil {
		writeAppError(c, err, "send message failed")
		return
	}
	reply, err := sess.SendMessage(c.Request.Context(), req.Text)
	if err != nil {
		writeAppError(c, err, "send message failed")
		return
	}
	response.OK(c, gin.H{
		"reply":   reply,
		"session": viewOf(sess),
	})
}

// End finishes the session and returns the canvas now under review, if any.
func (h *SessionHandler) End(c *gin.Context) {
	pending, err := h.studio.EndSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err, "end session failed")
		return
	}
	response.OK(c, gin.H{"pending": pending})
}

// Close leaves the session without creating a canvas.
func (h *SessionHandler) Close(c *gin.Context) {
	id := c.Param("id")
	if !h.studio.CloseSession(id) {
		writeAppError(c, app.ErrSessionNotFound, "")
		return
	}
	response.OK(c, gin.H{"gemId": id, "closed": true})
}
