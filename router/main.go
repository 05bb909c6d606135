package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/config"
	"github.com/aulacert/aula-cert-api/database"
	"github.com/aulacert/aula-cert-api/handlers"
	catalog_handlers "github.com/aulacert/aula-cert-api/handlers/catalog"
	certification_handlers "github.com/aulacert/aula-cert-api/handlers/certification"
	classroom_handlers "github.com/aulacert/aula-cert-api/handlers/classroom"
	evaluation_handlers "github.com/aulacert/aula-cert-api/handlers/evaluation"
	percentage_handlers "github.com/aulacert/aula-cert-api/handlers/percentage"
	summary_handlers "github.com/aulacert/aula-cert-api/handlers/summary"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/services/analysis"
	"github.com/aulacert/aula-cert-api/services/objectstore"
	"github.com/aulacert/aula-cert-api/utils"
	"github.com/aulacert/aula-cert-api/utils/cache"
	"github.com/aulacert/aula-cert-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage, reporting *database.ReportingStore) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the report cache and the cross-process summary lock.
	// The API degrades to in-process guards without it.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Report caching and cross-process locks will be disabled.", err)
	}

	// Compliance analysis service client
	analysisClient := analysis.NewClient(analysis.Config{
		BaseURL:   getEnv.ANALYSIS_SERVICE_URL,
		JWTSecret: getEnv.ANALYSIS_JWT_SECRET,
		JWTIssuer: getEnv.ANALYSIS_JWT_ISSUER,
	})

	// Certification archive store (optional)
	var archiveStore *objectstore.ArchiveStore
	if getEnv.ARCHIVE_BUCKET != "" {
		archiveStore, err = objectstore.NewArchiveStore(objectstore.ArchiveConfig{
			AccessKey: getEnv.ARCHIVE_ACCESS_KEY,
			SecretKey: getEnv.ARCHIVE_SECRET_KEY,
			Bucket:    getEnv.ARCHIVE_BUCKET,
			Region:    getEnv.ARCHIVE_REGION,
			Endpoint:  getEnv.ARCHIVE_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize archive store: %v. Certification snapshots will be skipped.", err)
		}
	}

	// Services
	catalogService := services.NewCatalogService(db)
	evaluationService := services.NewEvaluationService(db, analysisClient)
	aggregationService := services.NewAggregationService(reporting, redisCache)
	summaryService := services.NewSummaryService(db, aggregationService, redisCache)
	certificationService := services.NewCertificationService(db, aggregationService, archiveStore)

	// Handlers
	catalogHandler := catalog_handlers.NewCatalogHandler(db, catalogService)
	percentageHandler := percentage_handlers.NewPercentageHandler(db)
	classroomHandler := classroom_handlers.NewClassroomHandler(db, aggregationService)
	evaluationHandler := evaluation_handlers.NewEvaluationHandler(db, evaluationService, aggregationService)
	summaryHandler := summary_handlers.NewSummaryHandler(db, summaryService)
	certificationHandler := certification_handlers.NewCertificationHandler(db, certificationService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Catalog browsing tree
	api.Get("/catalog/tree", catalogHandler.GetTree)

	// Cycles routes
	cycles := api.Group("/cycles")
	cycles.Get("/", catalogHandler.ListCycles)
	cycles.Post("/", catalogHandler.CreateCycle)
	cycles.Delete("/:id", catalogHandler.DeleteCycle)

	// Areas routes
	areas := api.Group("/areas")
	areas.Get("/", catalogHandler.ListAreas)
	areas.Post("/", catalogHandler.CreateArea)
	areas.Delete("/:id", catalogHandler.DeleteArea)

	// Resources routes
	resources := api.Group("/resources")
	resources.Get("/", catalogHandler.ListResources)
	resources.Post("/", catalogHandler.CreateResource)
	resources.Delete("/:id", catalogHandler.DeleteResource)

	// Contents routes
	contents := api.Group("/contents")
	contents.Get("/", catalogHandler.ListContents)
	contents.Post("/", catalogHandler.CreateContent)
	contents.Delete("/:id", catalogHandler.DeleteContent)

	// Indicators routes
	indicators := api.Group("/indicators")
	indicators.Get("/", catalogHandler.ListIndicators)
	indicators.Post("/", catalogHandler.CreateIndicator)
	indicators.Put("/:id", catalogHandler.UpdateIndicator)
	indicators.Delete("/:id", catalogHandler.DeleteIndicator)

	// Percentages (weight table) routes
	percentages := api.Group("/percentages")
	percentages.Get("/", percentageHandler.ListPercentages)
	percentages.Post("/", percentageHandler.CreatePercentage)
	percentages.Put("/:id", percentageHandler.UpdatePercentage)
	percentages.Delete("/:id", percentageHandler.DeletePercentage)

	// Classrooms routes
	classrooms := api.Group("/classrooms")
	classrooms.Get("/", classroomHandler.ListClassrooms)
	classrooms.Get("/:id", classroomHandler.GetClassroom)
	classrooms.Post("/", classroomHandler.CreateClassroom)
	classrooms.Put("/:id", classroomHandler.UpdateClassroom)
	classrooms.Delete("/:id", classroomHandler.DeleteClassroom)
	classrooms.Get("/:id/report", classroomHandler.GetReport)

	// Evaluations (nested under classrooms, plus flat management routes)
	classrooms.Get("/:classroom_id/evaluations", evaluationHandler.ListEvaluations)
	classrooms.Post("/:classroom_id/evaluations", evaluationHandler.StartEvaluation)

	evaluations := api.Group("/evaluations")
	evaluations.Get("/:id", evaluationHandler.GetEvaluation)
	evaluations.Put("/:id/indicators/:indicator_eval_id", evaluationHandler.EditOutcome)
	evaluations.Delete("/:id", evaluationHandler.DeleteEvaluation)

	// Forms and summaries
	forms := api.Group("/forms")
	forms.Get("/", summaryHandler.ListForms)
	forms.Post("/", summaryHandler.CreateForm)
	forms.Get("/:id", summaryHandler.GetForm)
	forms.Get("/:id/summary", summaryHandler.GetSummary)
	forms.Delete("/:id", summaryHandler.DeleteForm)

	// Certifications
	classrooms.Get("/:classroom_id/certifications", certificationHandler.ListCertifications)
	classrooms.Post("/:classroom_id/certifications", certificationHandler.IssueCertification)
	api.Get("/certifications/:id", certificationHandler.GetCertification)
}
