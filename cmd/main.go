package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pdfbrain/pdfbrain-backend/config"
	"github.com/pdfbrain/pdfbrain-backend/controllers"
	"github.com/pdfbrain/pdfbrain-backend/routes"
	"github.com/pdfbrain/pdfbrain-backend/services"
	"github.com/pdfbrain/pdfbrain-backend/utils"
	"github.com/pdfbrain/pdfbrain-backend/ws"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found")
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := config.InitDB(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	log.Info().Msg("postgreSQL connected & migrated successfully")

	var ai services.AIService
	switch settings.AIProvider {
	case "openai":
		ai = services.NewOpenAIService(settings.OpenAIBaseURL, settings.OpenAIAPIKey, settings.OpenAIModel)
	default:
		gemini, err := services.NewGeminiService(context.Background(), settings.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client init failed")
		}
		defer gemini.Close()
		ai = gemini
	}

	gateway := services.NewLLMGateway(ai, settings.LLMTimeout)
	chat := services.NewChatSessionManager(db)
	quiz := services.NewQuizService(db, gateway, settings.MaxContentLength)
	store := utils.NewFileStore(settings.UploadDir, settings.SupabaseURL, settings.SupabaseKey)
	hub := ws.NewHub()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, routes.Handlers{
		PDF:    controllers.NewPDFController(db, gateway, store, hub, settings.MaxFileSize, settings.MaxContentLength),
		Chat:   controllers.NewChatController(db, chat, gateway, settings.MaxContentLength),
		Quiz:   controllers.NewQuizController(quiz),
		WS:     ws.NewHandler(hub, db, chat, gateway, settings.MaxContentLength),
		Health: controllers.HealthCheck(db),
	})

	log.Info().Str("port", settings.Port).Msg("server starting")
	if err := r.Run(":" + settings.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
