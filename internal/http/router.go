package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/eduraio/qanda-api/internal/auth"
	"github.com/eduraio/qanda-api/internal/cache"
	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/http/handlers"
	"github.com/eduraio/qanda-api/internal/http/middlewares"
	"github.com/eduraio/qanda-api/internal/observability"
	"github.com/eduraio/qanda-api/internal/redisclient"
	"github.com/eduraio/qanda-api/internal/repo/postgres"
	"github.com/eduraio/qanda-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "qanda-api"

func NewRouter(cfg config.Config, pool *pgxpool.Pool, rdb *redisclient.Client) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware(serviceName))

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// wiring: repos -> services -> handlers

	usersRepo := postgres.NewUsersRepo(pool, prom)
	questionsRepo := postgres.NewQuestionsRepo(pool, prom)
	answersRepo := postgres.NewAnswersRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	usersSvc := service.NewUsers(usersRepo)
	questionsSvc := service.NewQuestions(questionsRepo, answersRepo)
	answersSvc := service.NewAnswers(answersRepo, questionsRepo)
	authSvc := service.NewAuth(usersRepo, jwtManager)

	questionListCache := cache.New(5 * time.Second)

	usersHandler := handlers.NewUsersHandler(usersSvc)
	questionsHandler := handlers.NewQuestionsHandlerWithCache(questionsSvc, questionListCache)
	answersHandler := handlers.NewAnswersHandlerWithCache(answersSvc, questionListCache)
	authHandler := handlers.NewAuthHandler(authSvc)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// limiter backends: redis when configured, per-process otherwise
	publicLimit := limiterFor(rdb, 20, time.Minute)
	apiLimit := limiterFor(rdb, 300, time.Minute)

	// public surface
	r.POST("/auth/login", publicLimit(middlewares.KeyByIP), authHandler.Login)
	r.POST("/users", publicLimit(middlewares.KeyByIP), usersHandler.Register)

	// everything else needs a verified token
	authed := r.Group("/", authMw.RequireAuth(), apiLimit(middlewares.KeyByUserOrIP))

	authed.GET("/users", usersHandler.List)
	authed.GET("/users/:id", usersHandler.Get)
	authed.PUT("/users/:id", usersHandler.Update)
	authed.DELETE("/users/:id", usersHandler.Delete)

	authed.POST("/questions", questionsHandler.Create)
	authed.GET("/questions", questionsHandler.List)
	authed.GET("/questions/:id", questionsHandler.Get)
	authed.PUT("/questions/:id", questionsHandler.Update)
	authed.DELETE("/questions/:id", questionsHandler.Delete)
	authed.GET("/questions/:id/answers", questionsHandler.ListAnswers)

	authed.POST("/answers", answersHandler.Create)
	authed.GET("/answers", answersHandler.List)
	authed.GET("/answers/:id", answersHandler.Get)
	authed.PUT("/answers/:id", answersHandler.Update)
	authed.DELETE("/answers/:id", answersHandler.Delete)

	return r
}

// limiterFor returns a middleware factory bound to the chosen backend.
func limiterFor(rdb *redisclient.Client, limit int, window time.Duration) func(func(*gin.Context) string) gin.HandlerFunc {
	if rdb != nil {
		rl := middlewares.NewRedisRateLimiter(rdb.Raw(), slog.Default(), limit, window)
		return rl.RateLimiterMiddleware
	}

	rl := middlewares.NewRateLimiter(limit, window)
	return rl.RateLimiterMiddleware
}
