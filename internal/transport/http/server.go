package http

import (
	"github.com/gin-gonic/gin"

	"gemcanvas/internal/bootstrap"
	"gemcanvas/internal/repository"
	"gemcanvas/internal/transport/http/handler"
	"gemcanvas/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Log), gin.Recovery())
	if len(app.Config.App.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(app.Config.App.AllowedOrigins))
	}

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	var journalRepo *repository.JournalRepository
	if app.JournalWorker != nil {
		journalRepo = app.Journal
	}
	authHandler := handler.NewAuthHandler(app.Auth)
	gemHandler := handler.NewGemHandler(app.Studio)
	knowledgeHandler := handler.NewKnowledgeHandler(app.Studio)
	sessionHandler := handler.NewSessionHandler(app.Studio)
	canvasHandler := handler.NewCanvasHandler(app.Studio)
	journalHandler := handler.NewJournalHandler(journalRepo)

	v1 := router.Group("/api/v1")
	v1.GET("/status", healthHandler.Status)
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Auth), authHandler.Me)

	api := v1.Group("")
	api.Use(middleware.AuthJWT(app.Auth), middleware.RequireGateway(app.ConfigErr))

	api.GET("/gems", gemHandler.List)
	api.POST("/gems", gemHandler.Create)
	api.GET("/gems/:id", gemHandler.Get)
	api.PUT("/gems/:id", gemHandler.Update)
	api.DELETE("/gems/:id", gemHandler.Delete)
	api.GET("/gems/:id/canvases", gemHandler.Canvases)
	api.GET("/gems/:id/canvases/:canvasId/html", gemHandler.CanvasHTML)
	api.GET("/canvases", gemHandler.Feed)

	api.POST("/gems/:id/session", sessionHandler.Launch)
	api.GET("/gems/:id/session", sessionHandler.Get)
	api.DELETE("/gems/:id/session", sessionHandler.Close)
	api.POST("/gems/:id/session/messages", sessionHandler.SendMessage)
	api.POST("/gems/:id/session/end", sessionHandler.End)

	api.GET("/canvas/review", canvasHandler.Review)
	api.POST("/canvas/review/accept", canvasHandler.Accept)
	api.POST("/canvas/review/discard", canvasHandler.Discard)

	api.GET("/knowledge-bases", knowledgeHandler.List)
	api.POST("/knowledge-bases", knowledgeHandler.Create)
	api.PUT("/knowledge-bases/:id", knowledgeHandler.Update)
	api.DELETE("/knowledge-bases/:id", knowledgeHandler.Delete)

	api.GET("/journal", journalHandler.List)

	return router
}
