package server

import (
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/auth"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/controllers"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/middleware"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/qrcode"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Options holds the collaborators the router is built from
type Options struct {
	DB            *gorm.DB
	Cache         cache.Cache
	Carts         cart.Store
	Publisher     events.Publisher
	JWTSecret     string
	PublicBaseURL string
	CORSOrigins   []string
}

// Services are constructed once per router
type Services struct {
	Dishes  services.DishService
	Carts   services.CartService
	Orders  services.OrderService
	Reviews services.ReviewService
	Reports services.ReportService
	Users   services.UserService
	Clients services.ClientService
}

// NewServices wires the service layer over opts
func NewServices(opts Options) Services {
	c := opts.Cache
	if c == nil {
		c = cache.Nop{}
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return Services{
		Dishes:  services.NewDishService(opts.DB, c),
		Carts:   services.NewCartService(opts.DB, opts.Carts),
		Orders:  services.NewOrderService(opts.DB, c, opts.Carts, publisher),
		Reviews: services.NewReviewService(opts.DB, c, publisher),
		Reports: services.NewReportService(opts.DB, c),
		Users:   services.NewUserService(opts.DB),
		Clients: services.NewClientService(opts.DB),
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Location", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(opts Options, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}
	setupRoutes(router, opts, svc)
	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, opts Options, svc Services) {
	oauthService := auth.NewOAuthService(opts.DB, opts.JWTSecret)

	healthController := controllers.NewHealthController(opts.DB)
	authController := controllers.NewAuthController(svc.Users, opts.JWTSecret)
	clientController := controllers.NewClientController(svc.Clients)
	dishController := controllers.NewDishController(svc.Dishes)
	cartController := controllers.NewCartController(svc.Carts, svc.Orders)
	orderController := controllers.NewOrderController(svc.Orders, qrcode.NewOrderLinkGenerator(opts.PublicBaseURL))
	reviewController := controllers.NewReviewController(svc.Reviews)
	reportController := controllers.NewReportController(svc.Reports)

	router.GET("/health/", healthController.Health)

	v1 := router.Group("/api/v1")
	{
		authAPI := v1.Group("/auth")
		{
			authAPI.POST("/register", authController.Register)
			authAPI.POST("/login", authController.Login)
		}
		v1.POST("/oauth/token", oauthService.HandleToken)

		publicAPI := v1.Group("/public")
		{
			publicAPI.GET("/dishes", dishController.ListDishes)
			publicAPI.GET("/dishes/:id", dishController.GetDish)
			publicAPI.GET("/reviews", reviewController.ListReviews)
		}

		protectedAPI := v1.Group("/protected")
		protectedAPI.Use(middleware.OAuth2Auth([]byte(opts.JWTSecret)))
		{
			cartAPI := protectedAPI.Group("/cart", middleware.RequireCapability(access.ManageCart))
			{
				cartAPI.GET("", cartController.ViewCart)
				cartAPI.POST("/add/:id", cartController.AddToCart)
				cartAPI.POST("/remove/:id", cartController.RemoveFromCart)
				cartAPI.GET("/pickup-times", cartController.PickupTimes)
			}
			protectedAPI.POST("/checkout", middleware.RequireCapability(access.PlaceOrder), orderController.Checkout)

			ordersAPI := protectedAPI.Group("/orders", middleware.RequireCapability(access.ViewOwnOrders))
			{
				ordersAPI.GET("", orderController.ListOrders)
				ordersAPI.GET("/:id", orderController.GetOrder)
				ordersAPI.GET("/:id/status", orderController.OrderStatus)
				ordersAPI.GET("/:id/qrcode", orderController.OrderQRCode)
			}
			reviewsAPI := protectedAPI.Group("/orders/:id", middleware.RequireCapability(access.SubmitReview))
			{
				reviewsAPI.GET("/review", reviewController.GetReview)
				reviewsAPI.POST("/review", reviewController.SubmitReview)
				reviewsAPI.GET("/dish-reviews", reviewController.GetDishReviews)
				reviewsAPI.POST("/dish-reviews", reviewController.SubmitDishReviews)
			}

			staffAPI := protectedAPI.Group("/staff")
			{
				dishesAPI := staffAPI.Group("/dishes", middleware.RequireCapability(access.ManageDishes))
				{
					dishesAPI.GET("", dishController.ListAllDishes)
					dishesAPI.POST("", dishController.CreateDish)
					dishesAPI.PUT("/:id", dishController.UpdateDish)
					dishesAPI.DELETE("/:id", dishController.DeleteDish)
				}
				staffOrdersAPI := staffAPI.Group("/orders", middleware.RequireCapability(access.ManageOrders))
				{
					staffOrdersAPI.GET("", orderController.StaffListOrders)
					staffOrdersAPI.POST("/:id/complete", orderController.CompleteOrder)
				}
				staffAPI.GET("/reports/monthly", middleware.RequireCapability(access.ViewReports), reportController.MonthlyReport)
			}

			clientsAPI := protectedAPI.Group("/clients", middleware.RequireCapability(access.ManageClients))
			{
				clientsAPI.POST("", clientController.CreateClient)
				clientsAPI.GET("", clientController.ListClients)
				clientsAPI.DELETE("/:id", clientController.DeleteClient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
