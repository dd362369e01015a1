package handlers

import (
	"net/http"

	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/metrics"
	"motor_dashboard/internal/render"
	"motor_dashboard/internal/service"

	_ "motor_dashboard/docs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithAllowedOrigins lists the cross-origin callers accepted by the JSON API
// and the live socket.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) {
		h.allowedOrigins = append(h.allowedOrigins, origins...)
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.sessionMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.StaticFS("/static", http.FS(render.Assets()))

	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.zonesPage)
	r.GET("/zones", h.zonesPage)
	r.GET("/zone/:id/motors", h.motorsPage)

	device := r.Group("/device/:id")
	{
		device.GET("", h.devicePage)
		device.GET("/live", h.deviceLive)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.corsMiddleware())
	{
		api.GET("/events", h.listStatusEvents)
		api.OPTIONS("/events", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	c := cors.New(cors.Options{
		// An empty AllowedOrigins means "*" to rs/cors; the func keeps the
		// browser API on the same origin list as the live socket.
		AllowOriginFunc: h.originAllowed,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
