package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"advisory-service/internal/ai/gemini"
	"advisory-service/internal/config"
	"advisory-service/internal/database/minio"
	"advisory-service/internal/database/postgres"
	redisdb "advisory-service/internal/database/redis"
	"advisory-service/internal/event"
	"advisory-service/internal/handlers"
	"advisory-service/internal/metrics"
	"advisory-service/internal/models"
	"advisory-service/internal/repository"
	"advisory-service/internal/services"
	"advisory-service/internal/viewstate"
	"advisory-service/internal/worker"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func setupLogging(logDir string) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	return file, nil
}

// integrations tracks which optional backends came up, for /checkhealth.
type integrations struct {
	Store       string `json:"store"`
	Minio       bool   `json:"minio"`
	Postgres    bool   `json:"postgres"`
	RabbitMQ    bool   `json:"rabbitmq"`
	Gemini      int    `json:"gemini_clients"`
	LiveWeather bool   `json:"live_weather"`
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Printf("File logging unavailable, writing to stderr: %v", err)
	} else {
		defer logFile.Close()
	}

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := integrations{Store: "memory", LiveWeather: cfg.WeatherCfg.APIKey != ""}

	// worker pool shared by every simulated or remote computation
	pool := worker.NewWorkingPool(cfg.WorkerCfg.NumWorkers, cfg.WorkerCfg.QueueSize)
	runner := viewstate.NewRunner(pool)

	// stores
	soilRepo := repository.NewMemoryViewRepository[models.SoilForm, models.SoilHealthReport](cfg.StoreCfg.ViewTTL)
	cropRepo := repository.NewMemoryViewRepository[models.CropSuggestionRequest, models.CropSuggestionResult](cfg.StoreCfg.ViewTTL)
	chatRepo := repository.NewMemoryConversationRepository(cfg.StoreCfg.ViewTTL)
	if cfg.StoreCfg.Backend == "redis" {
		redisClient, err := redisdb.NewRedisClient(ctx, cfg.RedisCfg)
		if err != nil {
			log.Printf("Redis unavailable, keeping views in memory: %v", err)
		} else {
			defer redisClient.Close()
			client := redisClient.GetClient()
			soilRepo = repository.NewRedisViewRepository[models.SoilForm, models.SoilHealthReport](client, cfg.StoreCfg.ViewTTL)
			cropRepo = repository.NewRedisViewRepository[models.CropSuggestionRequest, models.CropSuggestionResult](client, cfg.StoreCfg.ViewTTL)
			chatRepo = repository.NewRedisConversationRepository(client, cfg.StoreCfg.ViewTTL)
			status.Store = "redis"
		}
	}

	contentRepo := repository.NewStaticContentRepository()
	if cfg.PostgresCfg.Enabled {
		log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
			cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
		db, err := postgres.Connect(ctx, cfg.PostgresCfg)
		if err != nil {
			log.Printf("error connect to database, serving static dashboard content: %s", err)
		} else {
			defer db.Close()
			pgRepo, err := repository.NewPostgresContentRepository(ctx, db)
			if err != nil {
				log.Printf("failed to prepare dashboard tables, serving static content: %v", err)
			} else {
				contentRepo = pgRepo
				status.Postgres = true
			}
		}
	}

	var reportStore services.ReportStore
	if cfg.MinioCfg.Enabled {
		minioClient, err := minio.NewMinioClient(ctx, cfg.MinioCfg)
		if err != nil {
			log.Printf("MinIO unavailable, soil reports will not be archived: %v", err)
		} else {
			reportStore = minioClient
			status.Minio = true
		}
	}

	var publisher event.AnalysisPublisher = event.NoopPublisher{}
	var rabbitPublisher *event.RabbitPublisher
	if cfg.RabbitMQCfg.Enabled {
		conn, err := event.ConnectRabbitMQ(ctx, cfg.RabbitMQCfg)
		if err != nil {
			log.Printf("RabbitMQ unavailable, analysis events are dropped: %v", err)
		} else {
			defer conn.Close()
			rabbitPublisher = event.NewRabbitPublisher(conn)
			publisher = rabbitPublisher
			status.RabbitMQ = true
		}
	}

	var (
		extractor   services.ReportExtractor
		responder   services.Responder
		transcriber services.Transcriber
	)
	chatDelay := cfg.DelayCfg.ChatReply
	if clients := gemini.NewClientsFromKeys(ctx, cfg.GeminiAPICfg.APIKeys, cfg.GeminiAPICfg.FlashName, cfg.GeminiAPICfg.ProName); len(clients) > 0 {
		selector := gemini.NewGeminiClientSelector(clients)
		defer selector.Close()
		extractor = selector
		responder = services.NewAIResponder(selector)
		transcriber = selector
		// real model latency replaces the simulated delay
		chatDelay = 0
		status.Gemini = selector.GetClientCount()
	}

	// services
	soilService := services.NewSoilHealthService(runner, cfg.DelayCfg.SoilAnalysis, cfg.DelayCfg.ReportExtraction, reportStore, extractor)
	cropService := services.NewCropService(cfg.DelayCfg.CropAnalysis)
	chatService := services.NewChatService(chatRepo, runner, responder, transcriber, chatDelay)
	contentService := services.NewContentService()
	weatherService := services.NewWeatherService(cfg.WeatherCfg, nil)
	dashboardService := services.NewDashboardService(weatherService, contentRepo)
	soilViews := services.NewViewService(soilService.ViewFlow(), soilRepo, runner, publisher)
	cropViews := services.NewViewService(cropService.ViewFlow(), cropRepo, runner, publisher)

	// router
	r := gin.Default()
	r.Use(metrics.Middleware())
	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		log.Fatalf("Failed to load page templates: %v", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/checkhealth", func(c *gin.Context) {
		body := gin.H{"status": "healthy", "service": "advisory-service", "integrations": status}
		if rabbitPublisher != nil {
			body["publisher"] = rabbitPublisher.HealthCheck()
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/metrics", metrics.Handler())

	handlers.NewContentHandler(contentService, dashboardService).RegisterRoutes(r)
	handlers.NewSoilHealthHandler(soilService, soilViews).RegisterRoutes(r)
	handlers.NewCropHandler(cropService, cropViews).RegisterRoutes(r)
	handlers.NewChatHandler(chatService).RegisterRoutes(r)
	handlers.NewPageHandler(contentService, dashboardService, soilService, soilViews, cropViews, chatService).RegisterRoutes(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool.Start(gctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("Starting advisory-service on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("Shutting down advisory-service")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("advisory-service stopped with error: %v", err)
	}
}
