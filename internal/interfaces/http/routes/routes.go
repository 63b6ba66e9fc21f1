// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/analytics"
	"github.com/your-org/solar-storefront/internal/domain/assistant"
	"github.com/your-org/solar-storefront/internal/domain/cart"
	"github.com/your-org/solar-storefront/internal/domain/checkout"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/domain/user"
	"github.com/your-org/solar-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/solar-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/solar-storefront/internal/pkg/auth"
	"github.com/your-org/solar-storefront/internal/pkg/events"
	"github.com/your-org/solar-storefront/internal/pkg/pdf"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Config    *config.Config
	Log       *logrus.Logger
	JWT       *auth.JWTManager
	Store     *store.Store
	Bus       *events.Bus
	Catalog   *product.Catalog
	Reviews   *product.ReviewService
	Users     *user.Service
	UserAdmin *user.AdminService
	Carts     *cart.Service
	Checkout  *checkout.Service
	Uploads   *upload.Service
	Analytics *analytics.Service
	Assistant *assistant.Service
	PDF       *pdf.Service
}

// SetupRoutes registers every /api/v1 route on rg
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	SetupAuthRoutes(rg, deps)
	SetupProductRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupSessionRoutes(rg, deps)
	SetupAdminRoutes(rg, deps)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Users)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/federated", authHandler.FederatedLogin)
		authGroup.POST("/admin", authHandler.AdminLogin)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWT))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// SetupProductRoutes sets up product and review routes
func SetupProductRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Reviews)
	reviewHandler := handlers.NewReviewHandler(deps.Reviews, deps.Users)
	eventsHandler := handlers.NewEventsHandler(deps.Bus, deps.Config.Store.HeartbeatEvery)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/events", eventsHandler.ProductEvents)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", productHandler.GetProductReviews)
	}

	reviews := rg.Group("/reviews")
	{
		reviews.GET("", reviewHandler.GetReviews)
		reviews.POST("", middleware.AuthMiddleware(deps.JWT), reviewHandler.CreateReview)
	}
}

// SetupCartRoutes sets up guest cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Carts)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout)

	// Cart routes work with guest sessions
	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id/increment", cartHandler.IncrementItem)
		cartGroup.PUT("/items/:id/decrement", cartHandler.DecrementItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.OptionalAuthMiddleware(deps.JWT))
	{
		checkoutGroup.POST("", checkoutHandler.StartCheckout)
		checkoutGroup.GET("/:id", checkoutHandler.GetCheckout)
		checkoutGroup.PUT("/:id/shipping", checkoutHandler.SubmitShipping)
		checkoutGroup.PUT("/:id/payment", checkoutHandler.SelectPayment)
		checkoutGroup.POST("/:id/proof", checkoutHandler.AttachProof)
		checkoutGroup.POST("/:id/confirm", checkoutHandler.ConfirmOrder)
		checkoutGroup.POST("/:id/whatsapp", checkoutHandler.WhatsAppHandoff)
	}
}

// SetupSessionRoutes sets up heartbeat, settings and assistant routes
func SetupSessionRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	sessionHandler := handlers.NewSessionHandler(deps.Store)
	assistantHandler := handlers.NewAssistantHandler(deps.Assistant)

	rg.POST("/sessions/heartbeat", middleware.OptionalAuthMiddleware(deps.JWT), sessionHandler.Heartbeat)
	rg.GET("/settings", sessionHandler.GetSettings)
	rg.POST("/assistant/chat", assistantHandler.Chat)
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Reviews)
	orderHandler := handlers.NewOrderHandler(deps.Store, deps.PDF, deps.Log)
	sessionHandler := handlers.NewSessionHandler(deps.Store)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Analytics)
	userAdminHandler := handlers.NewUserAdminHandler(deps.UserAdmin)
	uploadHandler := handlers.NewUploadHandler(deps.Uploads, deps.Config)
	eventsHandler := handlers.NewEventsHandler(deps.Bus, deps.Config.Store.HeartbeatEvery)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.JWT)) // Require authentication
	admin.Use(middleware.AdminMiddleware())        // Require admin privileges
	{
		// Product management
		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminGetProducts)
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		admin.POST("/uploads/image", uploadHandler.UploadImage)

		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
			orders.GET("/:id/invoice", orderHandler.AdminGetInvoice)
		}

		// Visitors
		admin.GET("/sessions", sessionHandler.AdminListSessions)
		bans := admin.Group("/bans")
		{
			bans.GET("", sessionHandler.AdminListBans)
			bans.POST("", sessionHandler.AdminBan)
			bans.DELETE("/:ip", sessionHandler.AdminUnban)
		}

		admin.GET("/settings", sessionHandler.GetSettings)
		admin.PUT("/settings", sessionHandler.AdminSaveSettings)

		// User management
		users := admin.Group("/users")
		{
			users.GET("", userAdminHandler.GetProfiles)
			users.GET("/export", userAdminHandler.ExportProfiles)
		}

		// Analytics
		analyticsGroup := admin.Group("/analytics")
		{
			analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboardStats)
			analyticsGroup.GET("/sales", analyticsHandler.GetSalesAnalytics)
		}

		admin.GET("/events", eventsHandler.AdminEvents)
	}
}
