package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pdfbrain/pdfbrain-backend/controllers"
	"github.com/pdfbrain/pdfbrain-backend/middleware"
	"github.com/pdfbrain/pdfbrain-backend/ws"
)

// Handlers groups everything SetupRouter needs to wire the API.
type Handlers struct {
	PDF    *controllers.PDFController
	Chat   *controllers.ChatController
	Quiz   *controllers.QuizController
	WS     *ws.Handler
	Health gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h Handlers) *gin.Engine {
	r.GET("/", func(c *gin.Context) {
		c.String(200, "PDF knowledge bot is running")
	})
	r.GET("/health", h.Health)

	r.POST("/auth/guest", controllers.GuestToken)

	pdf := r.Group("/pdf")
	pdf.Use(middleware.OptionalAuthMiddleware())
	{
		pdf.POST("/upload", h.PDF.Upload)
		pdf.GET("/documents", h.PDF.List)
		pdf.GET("/documents/:id", h.PDF.Get)
		pdf.DELETE("/documents/:id", h.PDF.Delete)
		pdf.GET("/documents/:id/content", h.PDF.Content)
	}

	chat := r.Group("/chat")
	chat.Use(middleware.OptionalAuthMiddleware())
	{
		chat.POST("/ask", h.Chat.Ask)
		chat.GET("/history/:id/:session", h.Chat.History)
		chat.GET("/sessions/:id", h.Chat.Sessions)
		chat.DELETE("/sessions/:id/:session", h.Chat.DeleteSession)
		chat.POST("/manipulate", h.Chat.Manipulate)
	}

	quiz := r.Group("/quiz")
	quiz.Use(middleware.OptionalAuthMiddleware())
	{
		quiz.POST("/generate", h.Quiz.Generate)
		quiz.GET("/", h.Quiz.List)
		quiz.GET("/:id", h.Quiz.Get)
		quiz.POST("/:id/submit", h.Quiz.Submit)
		quiz.DELETE("/:id", h.Quiz.Delete)
		quiz.GET("/document/:id/quizzes", h.Quiz.ListByDocument)
	}

	r.GET("/ws/documents", h.WS.HandleGlobalWebSocket)
	r.GET("/ws/documents/:id", h.WS.HandleDocumentWebSocket)
	r.GET("/ws/chat", h.WS.HandleChatWebSocket)

	return r
}
