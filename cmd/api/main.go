package main

import (
	"log"
	"os"

	_ "sigoc/api/swagger" // swagger docs
	"sigoc/internal/database"
	"sigoc/internal/handler"
	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/repository"
	"sigoc/internal/service"
	"sigoc/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           SIGOC API
// @version         1.0
// @description     API de acompanhamento de processos de auditoria e demandas de órgãos de controle.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "sigoc"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	processoRepo := repository.NewProcessoRepository(db)
	historicoRepo := repository.NewHistoricoRepository(db)
	demandaRepo := repository.NewDemandaRepository(db)
	reuniaoRepo := repository.NewReuniaoRepository(db)

	grupoRepo := repository.NewLookupRepository[model.GrupoAuditor](db, "nome ASC", []string{"nome"})
	auditorRepo := repository.NewLookupRepository[model.Auditor](db, "nome ASC", []string{"nome", "email"}, "Grupo")
	unidadeRepo := repository.NewLookupRepository[model.Unidade](db, "nome ASC", []string{"nome"})
	atribuicaoRepo := repository.NewLookupRepository[model.Atribuicao](db, "nome ASC", []string{"nome"})
	situacaoRepo := repository.NewLookupRepository[model.Situacao](db, "nome ASC", []string{"nome"})
	categoriaRepo := repository.NewLookupRepository[model.Categoria](db, "valor ASC", []string{"nome"})
	tipoDemandaRepo := repository.NewLookupRepository[model.TipoDemanda](db, "nome ASC", []string{"nome"})

	// Services
	recorder := service.NewHistoryRecorder(historicoRepo)
	userService := service.NewUserService(userRepo)
	processoService := service.NewProcessoService(processoRepo, historicoRepo, unidadeRepo, auditorRepo, situacaoRepo, categoriaRepo, atribuicaoRepo, recorder, txManager, wsHub)
	demandaService := service.NewDemandaService(demandaRepo, processoRepo)
	reuniaoService := service.NewReuniaoService(reuniaoRepo, processoRepo)
	statisticsService := service.NewStatisticsService(db)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	processoHandler := handler.NewProcessoHandler(processoService)
	demandaHandler := handler.NewDemandaHandler(demandaService)
	reuniaoHandler := handler.NewReuniaoHandler(reuniaoService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	grupoHandler := handler.NewLookupHandler(service.NewLookupService(grupoRepo, func(e *model.GrupoAuditor, id uuid.UUID) { e.ID = id }), "grupos-auditores")
	auditorHandler := handler.NewLookupHandler(service.NewLookupService(auditorRepo, func(e *model.Auditor, id uuid.UUID) { e.ID = id }), "auditores")
	unidadeHandler := handler.NewLookupHandler(service.NewLookupService(unidadeRepo, func(e *model.Unidade, id uuid.UUID) { e.ID = id }), "unidades")
	atribuicaoHandler := handler.NewLookupHandler(service.NewLookupService(atribuicaoRepo, func(e *model.Atribuicao, id uuid.UUID) { e.ID = id }), "atribuicoes")
	situacaoHandler := handler.NewLookupHandler(service.NewLookupService(situacaoRepo, func(e *model.Situacao, id uuid.UUID) { e.ID = id }), "situacoes")
	categoriaHandler := handler.NewLookupHandler(service.NewLookupService(categoriaRepo, func(e *model.Categoria, id uuid.UUID) { e.ID = id }), "categorias")
	tipoDemandaHandler := handler.NewLookupHandler(service.NewLookupService(tipoDemandaRepo, func(e *model.TipoDemanda, id uuid.UUID) { e.ID = id }), "tipos-demanda")

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API routes
	api := router.Group("/api/v1")
	userHandler.RegisterRoutes(api)
	processoHandler.RegisterRoutes(api)
	demandaHandler.RegisterRoutes(api)
	reuniaoHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)
	grupoHandler.RegisterRoutes(api)
	auditorHandler.RegisterRoutes(api)
	unidadeHandler.RegisterRoutes(api)
	atribuicaoHandler.RegisterRoutes(api)
	situacaoHandler.RegisterRoutes(api)
	categoriaHandler.RegisterRoutes(api)
	tipoDemandaHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
