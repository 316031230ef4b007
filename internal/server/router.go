package server

import (
	"net/http"

	"gearlog/internal/database"
	"gearlog/internal/events"
	"gearlog/internal/middleware"
	"gearlog/internal/modules/equipment"
	"gearlog/internal/modules/feed"
	"gearlog/internal/pkg/jwt"
	"gearlog/internal/pkg/response"
	"gearlog/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Broker is an external event sink that can report its connection state.
type Broker interface {
	events.Publisher
	IsHealthy() bool
}

type Deps struct {
	DB          *gorm.DB
	JWT         *jwt.Service
	Hub         *feed.Hub
	Broker      Broker // nil when RABBITMQ_URL is not set
	Metrics     *middleware.Metrics
	CORSOrigins []string
	Log         *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics("gearlog")
	}

	publisher := events.Multi{}
	if d.Hub != nil {
		publisher = append(publisher, d.Hub)
	}
	if d.Broker != nil {
		publisher = append(publisher, d.Broker)
	}

	userRepo := repository.NewUserRepository(d.DB)
	equipmentRepo := repository.NewEquipmentRepository(d.DB)
	linkRepo := repository.NewRetailerLinkRepository(d.DB)

	equipmentService := equipment.NewService(equipmentRepo, linkRepo, userRepo, publisher, log)
	equipmentHandler := equipment.NewHandler(equipmentService)

	router := gin.New()
	// ErrorLogger sits inside the access log and metrics so a recovered
	// panic is still seen by them as a 500.
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorLogger(log))
	router.Use(middleware.CORS(d.CORSOrigins))

	router.GET("/health", healthHandler(d.DB, d.Broker, log))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		if d.Hub != nil {
			feed.NewHandler(d.Hub, d.JWT, log).RegisterRoutes(v1)
		}

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		equipmentHandler.RegisterRoutes(protected)
	}

	return router
}

func healthHandler(db *gorm.DB, broker Broker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"database": "up", "broker": "disabled"}
		healthy := true

		if err := database.Ping(c.Request.Context(), db); err != nil {
			log.Error("database health check failed", zap.Error(err))
			status["database"] = "down"
			healthy = false
		}

		if broker != nil {
			status["broker"] = "up"
			if !broker.IsHealthy() {
				log.Error("rabbitmq health check failed")
				status["broker"] = "down"
				healthy = false
			}
		}

		if !healthy {
			response.ErrorWithDetails(c, http.StatusServiceUnavailable, "UNHEALTHY", "Service unhealthy", status)
			return
		}
		response.Success(c, http.StatusOK, status)
	}
}
