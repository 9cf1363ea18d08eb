package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noteful-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
// Las rutas se montan en la raiz y tambien bajo /api.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	userH *UserHandler,
	healthH *HealthHandler,
	credentials service.AuthStrategy,
	tokens service.AuthStrategy,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Health)

	localAuth := CredentialGuard(logger, credentials)
	jwtAuth := TokenGuard(logger, tokens)

	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.POST("/login", localAuth, authH.Login)
		g.POST("/refresh", jwtAuth, authH.Refresh)

		users := g.Group("/users")
		users.POST("", userH.CreateUser)
		users.GET("/:id", jwtAuth, userH.GetUser)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
