package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
	authsvc "sweetshop/internal/service/auth"
)

// AuthService is the account surface the handlers need.
type AuthService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(token string) (*domain.Identity, error)
}

// SweetService is the catalog surface the handlers need.
type SweetService interface {
	List(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error)
	Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
	Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error)
	Purchase(ctx context.Context, userID, sweetID string) (*domain.Purchase, error)
	History(ctx context.Context, userID string) ([]domain.Purchase, error)
}

// Deps groups what the router serves.
type Deps struct {
	Auth        AuthService
	Sweets      SweetService
	CORSOrigins []string
	// Metrics is optional; a fresh registry is used when nil.
	Metrics *Metrics
}

// buildRouter wires routes for the API.
func buildRouter(logger logrus.FieldLogger, db Pinger, deps Deps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), metrics.Middleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	a := &authHandlers{svc: deps.Auth, logger: logger}
	router.POST("/auth/register", a.register)
	router.POST("/auth/login", a.login)

	s := &sweetHandlers{svc: deps.Sweets, logger: logger}
	authed := router.Group("/", requireAuth(deps.Auth, logger))
	authed.GET("/sweets", s.list)
	authed.GET("/sweets/search", s.search)
	authed.POST("/sweets/:id/purchase", s.purchase)
	authed.GET("/purchases", s.history)

	admin := authed.Group("/", requireAdmin())
	admin.POST("/sweets", s.create)
	admin.PUT("/sweets/:id", s.update)
	admin.DELETE("/sweets/:id", s.remove)
	admin.POST("/sweets/:id/restock", s.restock)

	return router
}
