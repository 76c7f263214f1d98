package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/vsinha/blendmrp/pkg/application/services/planning"
	"github.com/vsinha/blendmrp/pkg/application/services/substitution"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/infrastructure/metrics"
	"github.com/vsinha/blendmrp/pkg/logger"
)

// Services are the application services exposed over HTTP. A nil service
// leaves its routes unregistered.
type Services struct {
	Planning     *planning.PlanningService
	Substitution *substitution.Service
	Catalog      repositories.CatalogRepository
	Events       events.EventStore
	Metrics      *metrics.Collector
}

// Option customizes the router
type Option func(*routerConfig)

type routerConfig struct {
	logger zerolog.Logger
}

// WithLogger replaces the global logger for request logging
func WithLogger(l zerolog.Logger) Option {
	return func(c *routerConfig) { c.logger = l }
}

// NewRouter builds the gin engine with every route under /api/v1
func NewRouter(services *Services, allowedOrigins []string, opts ...Option) *gin.Engine {
	cfg := &routerConfig{logger: logger.Log}
	for _, opt := range opts {
		opt(cfg)
	}

	router := gin.New()
	router.Use(RequestLogger(cfg.logger))
	router.Use(Recovery(cfg.logger))

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api/v1")

	if services.Planning != nil {
		planningHandler := NewPlanningHandler(services.Planning)
		apiGroup.GET("/plan", planningHandler.RunPlanning)
	}

	if services.Substitution != nil {
		substitutionHandler := NewSubstitutionHandler(services.Substitution)
		replaceGroup := apiGroup.Group("/replace")
		{
			replaceGroup.POST("", substitutionHandler.Replace)
			replaceGroup.POST("/bulk", substitutionHandler.ReplaceBulk)
		}
		historyGroup := apiGroup.Group("/history")
		{
			historyGroup.GET("", substitutionHandler.ListHistory)
			historyGroup.GET("/:id", substitutionHandler.GetHistoryEntry)
			historyGroup.POST("/:id/undo", substitutionHandler.Undo)
		}
	}

	if services.Catalog != nil {
		catalogHandler := NewCatalogHandler(services.Catalog)
		itemGroup := apiGroup.Group("/items")
		{
			itemGroup.GET("", catalogHandler.ListItems)
			itemGroup.POST("", catalogHandler.CreateItem)
			itemGroup.PATCH("/:code", catalogHandler.UpdateItem)
			itemGroup.DELETE("/:code", catalogHandler.DeleteItem)
		}
		apiGroup.GET("/inventory", catalogHandler.ListInventory)
		apiGroup.POST("/inventory", catalogHandler.AddInventory)
		bomGroup := apiGroup.Group("/boms")
		{
			bomGroup.GET("", catalogHandler.ListBOMEdges)
			bomGroup.POST("", catalogHandler.AddBOMEdge)
			bomGroup.GET("/validate", catalogHandler.ValidateBOM)
			bomGroup.PATCH("/:id", catalogHandler.UpdateBOMEdge)
			bomGroup.DELETE("/:id", catalogHandler.DeleteBOMEdge)
		}
		poGroup := apiGroup.Group("/purchase_orders")
		{
			poGroup.GET("", catalogHandler.ListPurchaseOrders)
			poGroup.POST("", catalogHandler.CreatePurchaseOrder)
			poGroup.PATCH("/:id", catalogHandler.SetPurchaseOrderStatus)
		}
		productionGroup := apiGroup.Group("/production_orders")
		{
			productionGroup.POST("", catalogHandler.CreateProductionOrder)
			productionGroup.PATCH("/:id", catalogHandler.SetProductionOrderStatus)
		}
	}

	if services.Events != nil {
		apiGroup.GET("/events", NewEventsHandler(services.Events).ListEvents)
	}

	return router
}

// errorResponse writes err with the status its kind maps to
func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrAtomicityViolation):
		return http.StatusInternalServerError
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidReference), errors.Is(err, entities.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrCycleDetected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
