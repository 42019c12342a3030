package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeMessageEmpty       = 40001
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeNotConfirmed       = 40300
	CodeGemNotFound        = 40401
	CodeKnowledgeNotFound  = 40402
	CodeSessionNotFound    = 40403
	CodeCanvasNotFound     = 40404
	CodeReplyInFlight      = 40901
	CodeSessionEnded       = 40902
	CodeCanvasBusy         = 40903
	CodeInternalServer     = 50000
	CodeCanvasFailed       = 50201
	CodeGatewayUnavailable = 50301
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
