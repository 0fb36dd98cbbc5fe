package app

import (
	"net/http"

	"TodoAPI/internal/auth"
	"TodoAPI/internal/cache"
	"TodoAPI/internal/config"
	"TodoAPI/internal/handlers"
	"TodoAPI/internal/repo"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Deps are the storage clients the routes are built on. A nil Redis disables the todo cache.
type Deps struct {
	Users repo.UserRepo
	Todos repo.TodoRepo
	Redis *redis.Client
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log zerolog.Logger, deps Deps) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	var todoCache *cache.TodoCache
	if deps.Redis != nil {
		todoCache = cache.NewTodoCache(deps.Redis, cfg.Redis.DefaultTTL.Duration())
	}
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())

	todoSvc := service.NewTodoService(deps.Todos, deps.Users, todoCache, log.With().Str("component", "todos").Logger())
	userSvc := service.NewUserService(deps.Users, todoSvc, cfg.Auth.BcryptCost, log.With().Str("component", "users").Logger())

	userHandler := handlers.NewUserHandler(userSvc, log)
	authHandler := handlers.NewAuthHandler(issuer, userSvc, log)
	todoHandler := handlers.NewTodoHandler(todoSvc, log)

	r.POST("/users", userHandler.Create)
	r.POST("/login", authHandler.Login)

	protected := r.Group("", auth.RequireBearer(issuer))
	registerUserRoutes(protected, userHandler)
	registerTodoRoutes(protected, todoHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.GET("/users", h.List)
	api.GET("/users/:id", h.GetByID)
	api.DELETE("/users/:id", h.Delete)
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
}
