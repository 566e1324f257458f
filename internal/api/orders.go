package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"orderintake/internal/models"
	"orderintake/internal/monitoring"
	"orderintake/internal/pipeline"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderProcessor runs one customer message through the pipeline
type OrderProcessor interface {
	Process(ctx context.Context, req pipeline.Request) *models.Order
}

// InventoryStore is the writable ingredient store behind the admin endpoints
type InventoryStore interface {
	List(ctx context.Context) ([]models.Ingredient, error)
	Upsert(ctx context.Context, name string, quantity float64, unit string) (*models.Ingredient, error)
}

// Options configures the API router
type Options struct {
	CORSOrigins []string
	JWTSecret   string
	Monitor     *monitoring.Monitor
	Logger      *zap.Logger
}

// OrderAPI represents the HTTP surface of the order-intake service
type OrderAPI struct {
	Router    *gin.Engine
	Processor OrderProcessor
	// Inventory is nil when the current restaurant is not backed by the store.
	Inventory InventoryStore
	Monitor   *monitoring.Monitor

	jwtSecret string
	logger    *zap.Logger
}

type orderRequest struct {
	Message         string           `json:"message" binding:"required"`
	CustomerName    string           `json:"customer_name"`
	PhoneNumber     string           `json:"phone_number"`
	DeliveryAddress string           `json:"delivery_address"`
	History         []models.Message `json:"history"`
}

func (r orderRequest) toPipeline() pipeline.Request {
	return pipeline.Request{
		Message:         strings.TrimSpace(r.Message),
		CustomerName:    r.CustomerName,
		PhoneNumber:     r.PhoneNumber,
		DeliveryAddress: r.DeliveryAddress,
		History:         r.History,
	}
}

// eventRequest is the queued-event envelope ({"detail": {...}}).
type eventRequest struct {
	Detail orderRequest `json:"detail"`
}

type inventoryUpdate struct {
	Quantity *float64 `json:"quantity" binding:"required,gte=0"`
	Unit     string   `json:"unit"`
}

// NewOrderAPI creates a new order API instance
func NewOrderAPI(processor OrderProcessor, inventory InventoryStore, opts Options) *OrderAPI {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NewMonitor()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		opts.Logger.Error("request panicked", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": fmt.Sprint(recovered),
		})
	}))
	router.Use(corsMiddleware(opts.CORSOrigins))

	api := &OrderAPI{
		Router:    router,
		Processor: processor,
		Inventory: inventory,
		Monitor:   opts.Monitor,
		jwtSecret: opts.JWTSecret,
		logger:    opts.Logger,
	}

	api.setupRoutes()
	return api
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// setupRoutes configures all API endpoints
func (a *OrderAPI) setupRoutes() {
	// Health check
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Order intake API is running"})
	})

	v1 := a.Router.Group("/api/v1")
	{
		// Order intake
		v1.POST("/orders", a.CreateOrder)
		v1.POST("/events", a.HandleEvent)
		v1.GET("/chat", a.Chat)

		// Inventory management
		v1.GET("/inventory", a.GetInventory)
		v1.PUT("/inventory/:name", AuthMiddleware(a.jwtSecret), a.UpdateInventory)

		v1.GET("/stats", a.GetStats)
	}
}

// Order intake handlers

func (a *OrderAPI) CreateOrder(c *gin.Context) {
	var req orderRequest
	if strings.HasPrefix(c.ContentType(), "text/plain") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Message = string(body)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.respond(c, req)
}

func (a *OrderAPI) HandleEvent(c *gin.Context) {
	var event eventRequest
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.respond(c, event.Detail)
}

func (a *OrderAPI) respond(c *gin.Context, req orderRequest) {
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	order := a.Processor.Process(c.Request.Context(), req.toPipeline())
	c.JSON(http.StatusOK, pipeline.NewResponse(order))
}

// Inventory management handlers

func (a *OrderAPI) GetInventory(c *gin.Context) {
	if a.Inventory == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Inventory is not backed by the ingredient store"})
		return
	}

	items, err := a.Inventory.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (a *OrderAPI) UpdateInventory(c *gin.Context) {
	if a.Inventory == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Inventory is not backed by the ingredient store"})
		return
	}

	var update inventoryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := a.Inventory.Upsert(c.Request.Context(), c.Param("name"), *update.Quantity, update.Unit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (a *OrderAPI) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, a.Monitor.GetMetrics())
}
