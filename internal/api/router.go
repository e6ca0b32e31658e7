package api

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/agroecology/cropvision/internal/api/handlers"
	mw "github.com/agroecology/cropvision/internal/api/middleware"
	"github.com/agroecology/cropvision/internal/buildconfig"
	"github.com/agroecology/cropvision/internal/classifier"
	"github.com/agroecology/cropvision/internal/domain"
	"github.com/agroecology/cropvision/internal/service"
	"github.com/agroecology/cropvision/internal/store"
	"github.com/agroecology/cropvision/internal/vision"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options configures NewApp. Paths that cannot be read degrade to empty
// or built-in data; a missing vision key leaves the local fallback only.
type Options struct {
	KnowledgeBasePath string
	ExpertsPath       string
	SoilDataPath      string

	Vision vision.Config

	ClassifierProvider string
	ClassifierURL      string
	ClassifierAPIKey   string

	APIKey                 string
	RateLimitRPS           float64
	RateLimitBurst         int
	IdentifyTimeout        time.Duration
	MaxImageBytes          int64
	CompatibilityCacheSize int
}

// Services groups the long-lived services so callers can build an App
// from pre-wired collaborators.
type Services struct {
	Matcher        *service.MatchingService
	Recommender    *service.RecommendationService
	Identification domain.Identifier
	Soil           *service.SoilService
	Prediction     *service.PredictionService
}

// App holds the router and the state reported by /health and /metrics.
type App struct {
	Router    *chi.Mux
	Services  Services
	metrics   *mw.Metrics
	startTime time.Time
	done      chan struct{}
}

// NewApp loads the reference data, builds the clients and services, and
// mounts the routes.
func NewApp(opts Options, logger *zap.Logger) *App {
	kb := store.LoadKnowledgeBase(opts.KnowledgeBasePath, logger)
	experts := store.LoadExpertDirectory(opts.ExpertsPath, logger)
	soils := store.LoadSoilCatalog(opts.SoilDataPath, logger)

	// External clients via provider factory
	primary, err := vision.NewClient(opts.Vision, logger)
	switch {
	case errors.Is(err, vision.ErrProviderDisabled):
		logger.Info("Vision provider disabled, using local fallback only")
	case err != nil:
		logger.Warn("Vision client initialization failed, using local fallback only",
			zap.String("provider", opts.Vision.Provider), zap.Error(err))
	default:
		logger.Info("Vision client initialized", zap.String("provider", opts.Vision.Provider))
	}

	crops, err := classifier.NewClient(opts.ClassifierProvider, opts.ClassifierURL, opts.ClassifierAPIKey)
	if err != nil {
		logger.Warn("Crop classifier unavailable", zap.String("provider", opts.ClassifierProvider), zap.Error(err))
	} else {
		logger.Info("Crop classifier initialized", zap.String("provider", opts.ClassifierProvider))
	}

	matcher := service.NewMatchingService(kb, logger)
	recommender := service.NewRecommendationService(matcher, experts, logger)
	soilSvc := service.NewSoilService(soils, opts.CompatibilityCacheSize, logger)

	svcs := Services{
		Matcher:        matcher,
		Recommender:    recommender,
		Identification: service.NewIdentificationService(primary, vision.NewLocalClient(logger), matcher, recommender, logger),
		Soil:           soilSvc,
		Prediction:     service.NewPredictionService(crops, soilSvc, logger),
	}
	return NewAppWithServices(svcs, opts, logger)
}

// NewAppWithServices mounts the routes over already-built services.
func NewAppWithServices(svcs Services, opts Options, logger *zap.Logger) *App {
	if opts.IdentifyTimeout <= 0 {
		opts.IdentifyTimeout = 60 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 100
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	// Handlers
	identifyHandler := handlers.NewIdentifyHandler(svcs.Identification, opts.MaxImageBytes, opts.IdentifyTimeout, logger)
	pestHandler := handlers.NewPestHandler(svcs.Matcher, svcs.Recommender)
	soilHandler := handlers.NewSoilHandler(svcs.Soil)
	predictHandler := handlers.NewPredictHandler(svcs.Prediction, logger)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Services:  svcs,
		metrics:   &mw.Metrics{},
		startTime: time.Now(),
		done:      make(chan struct{}),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                   // Generate/extract request ID first
	r.Use(middleware.RealIP)                                              // Extract real IP
	r.Use(app.metrics.Middleware)                                         // Collect metrics
	r.Use(mw.Logging(logger))                                             // Log all requests
	r.Use(middleware.Recoverer)                                           // Recover from panics
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, app.done)) // Rate limiting

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Post("/identify", identifyHandler.Identify)
		r.Get("/status", identifyHandler.Status)
		r.Post("/predict", predictHandler.Predict)
		r.Get("/experts", pestHandler.Experts)

		r.Route("/pests", func(r chi.Router) {
			r.Get("/search", pestHandler.Search)
			r.Post("/symptoms", pestHandler.Symptoms)
			r.Post("/analyze", pestHandler.Analyze)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", pestHandler.GetByKey)
				r.Get("/treatments", pestHandler.Treatments)
			})
		})

		r.Route("/soil-types", func(r chi.Router) {
			r.Get("/", soilHandler.List)
			r.Route("/{soil}", func(r chi.Router) {
				r.Get("/", soilHandler.Get)
				r.Get("/crops/{crop}", soilHandler.Advice)
			})
		})
	})

	return app
}

// Close stops background work started by the App.
func (app *App) Close() {
	select {
	case <-app.done:
	default:
		close(app.done)
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := app.Services.Identification.Status()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":                "ok",
			"version":               buildconfig.Version(),
			"knowledge_base_loaded": status.LocalDatabaseLoaded,
			"primary_api_available": status.PrimaryAPIAvailable,
			"soil_data_loaded":      app.Services.Soil.Loaded(),
			"supported_soil_types":  app.Services.Soil.SoilTypes(),
			"crop_model_loaded":     app.Services.Prediction.Available(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"requests":       app.metrics.Snapshot(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// Ensure clients satisfy interfaces at compile time.
var (
	_ domain.VisionClient      = (*vision.PlantIDClient)(nil)
	_ domain.VisionClient      = (*vision.LocalClient)(nil)
	_ domain.VisionClient      = (*vision.MockClient)(nil)
	_ domain.RateLimitReporter = (*vision.PlantIDClient)(nil)
	_ domain.CropClassifier    = (*classifier.HTTPClient)(nil)
	_ domain.CropClassifier    = (*classifier.MockClient)(nil)
	_ domain.Identifier        = (*service.IdentificationService)(nil)
)
