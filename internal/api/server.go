// Package api serves the supply-chain REST API and the inventory push channel.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"supplychain/internal/auth"
	"supplychain/internal/forecast"
	"supplychain/internal/models"
	"supplychain/internal/monitoring"
	"supplychain/internal/push"
	"supplychain/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ItemRepository stores inventory items
type ItemRepository interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, id string, item *models.Item) error
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context, threshold int) ([]models.Item, error)
	Adjust(ctx context.Context, id string, delta int) (*models.Item, error)
}

// OrderRepository stores customer orders
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, id string, o *models.Order) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository stores customers
type CustomerRepository interface {
	List(ctx context.Context) ([]models.Customer, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, id string, c *models.Customer) error
	Delete(ctx context.Context, id string) error
}

// SupplierRepository stores suppliers
type SupplierRepository interface {
	List(ctx context.Context) ([]models.Supplier, error)
	Get(ctx context.Context, id string) (*models.Supplier, error)
	Create(ctx context.Context, s *models.Supplier) error
	Update(ctx context.Context, id string, s *models.Supplier) error
	Delete(ctx context.Context, id string) error
}

// ReportRepository runs aggregate queries
type ReportRepository interface {
	DashboardSummary(ctx context.Context) (*store.DashboardSummary, error)
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API. Issuer, Hub, Monitor and Advisor are optional.
type Deps struct {
	Items     ItemRepository
	Orders    OrderRepository
	Customers CustomerRepository
	Suppliers SupplierRepository
	Reports   ReportRepository
	DB        Pinger

	// Publisher receives a push.UpdateMessage on push.InventoryTopic after
	// every item mutation. It is the Hub itself or a relay in front of it.
	Publisher push.Publisher
	Hub       *push.Hub

	Issuer  *auth.Issuer
	Monitor *monitoring.Monitor
	Advisor *forecast.Advisor
	Logger  *zap.Logger

	AllowedOrigins []string
}

// Server represents the HTTP API
type Server struct {
	Router *gin.Engine
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
	start  time.Time
}

var registerOnce sync.Once

// registerValidation installs the model rules on gin's validator so that
// binding errors read the same as client-side validation errors.
func registerValidation() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			models.RegisterTypes(v)
		}
	})
}

// NewServer creates a new API instance
func NewServer(deps Deps) *Server {
	registerValidation()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Advisor == nil {
		deps.Advisor = forecast.NewAdvisor(nil, logger)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if deps.Monitor != nil {
		router.Use(deps.Monitor.Middleware())
	}
	router.Use(corsMiddleware(deps.AllowedOrigins))

	s := &Server{
		Router: router,
		deps:   deps,
		logger: logger,
		now:    time.Now,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cors.New(cfg)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/api/hello", s.Hello)
	s.Router.GET("/api/health", s.Health)

	protected := []gin.HandlerFunc{}
	if s.deps.Issuer != nil {
		s.Router.POST("/api/auth/login", s.Login)
		protected = append(protected, auth.Middleware(s.deps.Issuer))
	}

	v1 := s.Router.Group("/api", protected...)
	{
		// Inventory
		v1.GET("/items", s.ListItems)
		v1.POST("/items", s.CreateItem)
		v1.GET("/items/low-stock", s.LowStock)
		v1.GET("/items/stock-overview", s.StockOverview)
		v1.GET("/items/categories", s.Categories)
		v1.GET("/items/restock", s.Restock)
		v1.GET("/items/:id", s.GetItem)
		v1.PUT("/items/:id", s.UpdateItem)
		v1.DELETE("/items/:id", s.DeleteItem)
		v1.POST("/items/:id/adjust", s.AdjustItem)

		// Orders
		v1.GET("/orders", s.ListOrders)
		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders/:id", s.GetOrder)
		v1.PUT("/orders/:id", s.UpdateOrder)
		v1.DELETE("/orders/:id", s.DeleteOrder)

		// Parties
		v1.GET("/customers", s.ListCustomers)
		v1.POST("/customers", s.CreateCustomer)
		v1.GET("/customers/:id", s.GetCustomer)
		v1.PUT("/customers/:id", s.UpdateCustomer)
		v1.DELETE("/customers/:id", s.DeleteCustomer)

		v1.GET("/suppliers", s.ListSuppliers)
		v1.POST("/suppliers", s.CreateSupplier)
		v1.GET("/suppliers/:id", s.GetSupplier)
		v1.PUT("/suppliers/:id", s.UpdateSupplier)
		v1.DELETE("/suppliers/:id", s.DeleteSupplier)

		v1.GET("/dashboard/summary", s.DashboardSummary)
	}

	if s.deps.Hub != nil {
		s.Router.GET("/topic/:name", append(protected, s.deps.Hub.ServeTopic)...)
	}
}

// Hello is the unauthenticated liveness greeting
func (s *Server) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from the supply chain API"})
}

// Health reports uptime and database reachability
func (s *Server) Health(c *gin.Context) {
	body := gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.start).Round(time.Second).String(),
		"database": "up",
	}
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges a username and password for a bearer token
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if !s.bind(c, &req) {
		return
	}
	token, err := s.deps.Issuer.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, token)
}

// bind decodes and validates the JSON body, answering 400 on failure
func (s *Server) bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.AsValidationError(err).Error()})
		return false
	}
	return true
}

// fail maps a repository error to a response
func (s *Server) fail(c *gin.Context, resource string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.Is(err, store.ErrInsufficientStock), errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("resource", resource),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// publishInventory signals subscribers that items changed. A failed publish
// is logged; the mutation itself already succeeded.
func (s *Server) publishInventory(ctx context.Context) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, push.InventoryTopic, []byte(push.UpdateMessage)); err != nil {
		s.logger.Warn("failed to publish inventory update", zap.Error(err))
	}
}
