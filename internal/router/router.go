package router

import (
	"net/http"

	"vidtube/internal/config"
	"vidtube/internal/handlers/api/v1/health"
	"vidtube/internal/handlers/api/v1/videos"
	"vidtube/internal/middleware"
	"vidtube/internal/response"
	"vidtube/internal/services"

	_ "vidtube/internal/docs" // registers the OpenAPI document with swag

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Options carries everything SetupRouter wires into handlers
type Options struct {
	Services        *services.ServiceCollection
	Live            videos.LiveStream
	Config          *config.Config
	Registerer      prometheus.Registerer
	Gatherer        prometheus.Gatherer
	ResponseBuilder *response.Builder
	Logger          *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	responses := opts.ResponseBuilder
	if responses == nil {
		responses = response.NewBuilder(nil, logger)
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	opts.Logger = logger

	r := mux.NewRouter()
	r.StrictSlash(false)
	r.Use(middleware.NewHTTPMetrics(opts.Registerer).Middleware)

	setFallbackHandlers(r, responses)

	// ===============================
	// SYSTEM ROUTES
	// ===============================

	healthController := health.NewHealthController(opts.Services, responses)
	r.HandleFunc("/", healthController.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", healthController.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// mux resolves misses on the subrouter itself, so it needs its own fallbacks
	api := r.PathPrefix("/api").Subrouter()
	setFallbackHandlers(api, responses)
	AddAPIRoutes(api, opts, responses)

	var allowedOrigins, proxyEntries []string
	if opts.Config != nil {
		allowedOrigins = opts.Config.Server.AllowedOrigins
		proxyEntries = opts.Config.Server.TrustedProxies
	}
	trusted, err := middleware.ParseTrustedProxies(proxyEntries)
	if err != nil {
		logger.Error("Ignoring TRUSTED_PROXIES, forwarding headers will not be honored", zap.Error(err))
		trusted = &middleware.TrustedProxies{}
	}

	// Outermost first
	var handler http.Handler = r
	handler = middleware.SecureHeaders(handler)
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.Logging()(handler)
	handler = middleware.Recover(responses)(handler)
	handler = middleware.ClientIP(trusted)(handler)
	handler = middleware.RequestID(logger)(handler)
	return handler
}

func setFallbackHandlers(r *mux.Router, responses *response.Builder) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteStatus(w, req, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteStatus(w, req, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
