package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/app"
	"gemcanvas/internal/transport/http/response"
)

// writeAppError maps a service error to a response. Unknown errors become a
// 500 carrying fallback.
func writeAppError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeMessageEmpty, err.Error())
	case errors.Is(err, app.ErrNotConfirmed):
		response.Error(c, http.StatusPreconditionRequired, response.CodeNotConfirmed, err.Error())
	case errors.Is(err, app.ErrGemNotFound):
		response.Error(c, http.StatusNotFound, response.CodeGemNotFound, err.Error())
	case errors.Is(err, app.ErrKnowledgeNotFound):
		response.Error(c, http.StatusNotFound, response.CodeKnowledgeNotFound, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrNoPendingCanvas):
		response.Error(c, http.StatusNotFound, response.CodeCanvasNotFound, err.Error())
	case errors.Is(err, app.ErrReplyInFlight):
		response.Error(c, http.StatusConflict, response.CodeReplyInFlight, err.Error())
	case errors.Is(err, app.ErrSessionEnded):
		response.Error(c, http.StatusConflict, response.CodeSessionEnded, err.Error())
	case errors.Is(err, app.ErrCanvasBusy):
		response.Error(c, http.StatusConflict, response.CodeCanvasBusy, err.Error())
	case errors.Is(err, app.ErrCanvasFailed):
		response.Error(c, http.StatusBadGateway, response.CodeCanvasFailed, app.CanvasFailedAlert)
	case errors.Is(err, app.ErrGatewayNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, response.CodeGatewayUnavailable, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func confirmerFor(c *gin.Context) app.Confirmer {
	if c.Query("confirm") == "true" {
		return app.AlwaysConfirm
	}
	return app.NeverConfirm
}
