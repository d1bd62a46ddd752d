package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/domain"
	"github.com/msomdec/product-catalog/internal/service"
)

// Services holds everything the routes depend on.
type Services struct {
	DB          domain.Database
	Auth        *service.AuthService
	Products    *service.ProductService
	Categories  *service.CategoryService
	Suppliers   *service.SupplierService
	AuthLimiter *service.TokenBucket
}

// NewEngine builds a gin engine with the global middleware chain installed.
// Forwarding headers such as X-Forwarded-For are honoured only when the
// direct peer is in trustedProxies; with none, ClientIP is the socket address.
func NewEngine(log zerolog.Logger, corsOrigins, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	r.Use(
		RequestID(log),
		Recovery(),
		RequestLogger(),
		SecurityHeaders(),
		CORS(corsOrigins),
	)
	r.HandleMethodNotAllowed = true
	return r, nil
}

// RegisterRoutes sets up all HTTP routes on the given router. Reads are
// public; writes require a bearer token.
func RegisterRoutes(r gin.IRouter, s Services) {
	r.GET("/healthz", HandleHealthz)
	r.GET("/readyz", HandleReadyz(s.DB))

	api := r.Group("/api")
	requireAuth := RequireAuth(s.Auth)

	authH := NewAuthHandler(s.Auth)
	authGroup := api.Group("/Auth")
	if s.AuthLimiter != nil {
		authGroup.Use(RateLimit(s.AuthLimiter))
	}
	authGroup.POST("/Login", authH.HandleLogin)
	authGroup.POST("/Register", authH.HandleRegister)

	products := NewProductHandler(s.Products)
	api.GET("/Products", products.HandleList)
	api.GET("/Products/:id", products.HandleGet)
	api.POST("/Products", requireAuth, products.HandleCreate)
	api.PUT("/Products/:id", requireAuth, products.HandleUpdate)
	api.DELETE("/Products/:id", requireAuth, products.HandleDelete)

	suppliers := NewSupplierHandler(s.Suppliers)
	api.GET("/Suppliers", suppliers.HandleList)
	api.GET("/Suppliers/:id", suppliers.HandleGet)
	api.POST("/Suppliers", requireAuth, suppliers.HandleCreate)

	categories := NewCategoryHandler(s.Categories)
	api.GET("/Categories", categories.HandleList)
	api.GET("/Categories/:id", categories.HandleGet)
	api.POST("/Categories", requireAuth, categories.HandleCreate)
}
