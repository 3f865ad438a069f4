package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"scholarly-backend/internal/config"
	"scholarly-backend/internal/controller"
	"scholarly-backend/internal/db"
	"scholarly-backend/internal/llm"
	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/internal/service"
	"scholarly-backend/pkg/middleware"
	"scholarly-backend/utilities"
)

func main() {
	printStartUpBanner()

	// Secrets (JWT keys, DB password) come from the environment; .env is
	// optional and only used for local setups.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	utilities.SetupLogging(cfg.Context.LogDir)

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	err = db.GetDB().AutoMigrate(
		&model.User{},
		&model.Paper{},
		&model.Section{},
		&model.PaperSummary{},
		&model.Concept{},
		&model.ConceptEdge{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizResult{},
		&model.ConceptUnderstanding{},
		&model.StudySession{},
		&model.ChatSession{},
		&model.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if cfg.DB.Initialize {
		seedDatabase()
	}

	// Create repositories.
	userRepo := repository.NewUserRepository()
	paperRepo := repository.NewPaperRepository()
	quizRepo := repository.NewQuizRepository()
	progressRepo := repository.NewProgressRepository()
	chatRepo := repository.NewChatRepository()

	// LLM client.
	ollamaClient := llm.NewOllamaClient(cfg.THIRD_PARTY.OllamaURL, cfg.THIRD_PARTY.OllamaModel)

	// Create services.
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	paperService := service.NewPaperService(paperRepo, service.PlainTextExtractor{}, ollamaClient, cfg.Context.WorkingDir)
	summaryService := service.NewSummaryService(paperRepo, ollamaClient)
	quizService := service.NewQuizService(paperRepo, quizRepo, ollamaClient)
	spacedRepService := service.NewSpacedRepetitionService(progressRepo)
	masteryService := service.NewMasteryService(paperRepo, quizRepo, progressRepo)
	progressService := service.NewProgressService(paperRepo, quizRepo, progressRepo, masteryService)
	tutorService := service.NewTutorService(chatRepo, paperRepo, progressRepo, ollamaClient)
	reportService := service.NewReportService(userRepo, paperRepo, masteryService, progressService, cfg.Context.WorkingDir)

	// Quiz submissions feed the review scheduler through the event bus.
	service.InitSpacedRepetitionEventListeners(spacedRepService)

	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	r.Use(utilities.AuthMiddleware())

	llmLimiter := middleware.NewRateLimiter(cfg.THIRD_PARTY.LLMRate, cfg.THIRD_PARTY.LLMBurst)

	controller.RegisterRoutes(r,
		authService,
		userService,
		paperService,
		summaryService,
		quizService,
		tutorService,
		masteryService,
		spacedRepService,
		progressService,
		reportService,
		llmLimiter,
	)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("SCHOLARLY", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("SCHOLARLY API (v%s)\n\n", "1.0.0")
}
