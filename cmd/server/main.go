package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/database"
	"github.com/fadilmartias/resume-analyzer/internal/domain/fiber/handler"
	"github.com/fadilmartias/resume-analyzer/internal/extractor"
	"github.com/fadilmartias/resume-analyzer/internal/middleware"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("config.dotenv_missing")
	}

	appConfig := config.LoadAppConfig()
	log := newLogger(appConfig)
	slog.SetDefault(log)
	ctx := context.Background()

	db, err := database.Connect(config.LoadDBConfig(), appConfig)
	if err != nil {
		log.Error("db.connect_failed", "error", err)
		os.Exit(1)
	}

	analysisConfig := config.LoadAnalysisConfig()
	completer, modelName, err := newCompleter(ctx, analysisConfig, appConfig, log)
	if err != nil {
		log.Error("inference.init_failed", "provider", analysisConfig.Provider, "error", err)
		os.Exit(1)
	}

	opts := usecase.AnalysisOptions{
		Model:        modelName,
		MaxTokens:    analysisConfig.MaxTokens,
		Temperature:  analysisConfig.Temperature,
		ShareBaseURL: analysisConfig.ShareBaseURL,
	}
	if appConfig.IsProduction() {
		opts.StoredTextLimit = analysisConfig.StoredTextLimit
	}
	analyses := usecase.NewAnalysisUsecase(repository.NewAnalysisRepository(db), completer, opts, log)

	// Role suggestions need Gemini embeddings even when completions go
	// through OpenRouter.
	var roles handler.RoleService
	if gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), log); err == nil {
		roles = usecase.NewRoleUsecase(analyses, repository.NewJobRepository(db), gemini, analysisConfig.RoleSuggestions, log)
	} else {
		log.Warn("roles.disabled", "error", err)
	}

	ex := newExtractor(ctx, log)
	uploadConfig := config.LoadUploadConfig()
	h := handler.NewAnalysisHandler(ex, analyses, roles, handler.Config{
		UploadDir:     uploadConfig.TempDir,
		MaxUploadSize: uploadConfig.MaxFileSize,
		AnalyzeLimit:  5,
	})

	app := newApp(appConfig, log)
	h.RegisterRoutes(app)

	log.Info("server.start", "port", appConfig.Port, "env", appConfig.Env, "provider", analysisConfig.Provider)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Error("server.stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(appConfig *config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(appConfig.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if appConfig.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newApp(appConfig *config.AppConfig, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(extractor.MaxUploadBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			if code >= fiber.StatusInternalServerError {
				middleware.Logger(c).Error("http.error", "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	return app
}

func newCompleter(ctx context.Context, cfg *config.AnalysisConfig, appConfig *config.AppConfig, log *slog.Logger) (service.Completer, string, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOpenRouter:
		orConfig := config.LoadOpenRouterConfig()
		s, err := service.NewOpenRouterService(orConfig, appConfig.BaseURL, log)
		return s, orConfig.Model, err
	default:
		gConfig := config.LoadGeminiConfig()
		s, err := service.NewGeminiService(ctx, gConfig, log)
		return s, gConfig.Model, err
	}
}

func newExtractor(ctx context.Context, log *slog.Logger) *extractor.Extractor {
	ocrConfig := config.LoadOCRConfig()
	tess := extractor.NewTesseract(extractor.TesseractConfig{
		Binary:      ocrConfig.Tesseract,
		Lang:        ocrConfig.Lang,
		TessdataDir: ocrConfig.TessdataDir,
		PSM:         ocrConfig.PSM,
	}, log)
	if version, err := tess.Check(ctx); err != nil {
		// Image uploads will fail with an OCR engine error until tesseract
		// is installed; PDFs with a text layer still work.
		log.Warn("ocr.unavailable", "binary", ocrConfig.Tesseract, "error", err)
	} else {
		log.Info("ocr.ready", "version", version)
	}

	ex := extractor.New(extractor.Config{
		ParseTimeout: ocrConfig.ParseTimeout,
		OCRFallback:  ocrConfig.PDFFallback,
	}, tess, extractor.TextLayerParser{}, log)
	if ocrConfig.PDFFallback {
		ex = ex.WithRasterizer(extractor.FitzRasterizer{MaxPages: ocrConfig.MaxPages})
	}
	return ex
}
