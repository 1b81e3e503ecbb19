package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/config"
	"github.com/flavorfleet/admin-dashboard/controllers"
	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/middlewares"
	"github.com/flavorfleet/admin-dashboard/services"
)

// Dependencies are the long-lived objects the HTTP layer is built from.
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Catalog   *services.CatalogService
	Analytics *services.AnalyticsService
	Sessions  *services.SessionService
	Hub       *events.Hub

	// LoginLimiter is built from the auth config when nil.
	LoginLimiter *middlewares.RateLimiter
}

func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.Server.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	if deps.Hub != nil {
		deps.Sessions.OnEnd(deps.Hub.DisconnectSession)
	}

	authController, err := controllers.NewAuthController(cfg.Auth, deps.Sessions)
	if err != nil {
		return nil, err
	}
	healthController := controllers.NewHealthController(deps.DB)
	sessionController := controllers.NewSessionController(deps.Sessions)
	categoryController := controllers.NewCategoryController(deps.Catalog)
	foodController := controllers.NewFoodController(deps.Catalog, deps.Sessions)
	addOnController := controllers.NewAddOnController(deps.Catalog)
	analyticsController := controllers.NewAnalyticsController(deps.Analytics, cfg.Reports.Currency)
	eventsController := controllers.NewEventsController(deps.Hub, cfg.Server.CORSOrigins)

	// Public
	r.GET("/ping", healthController.Ping)
	r.GET("/health", healthController.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.Storage.UploadDir)

	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middlewares.NewRateLimiter(cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst)
	}
	r.POST("/login", loginLimiter.RateLimit(), authController.Login)

	// Authenticated
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(deps.Sessions))
	{
		admin.POST("/logout", authController.Logout)

		admin.GET("/session", sessionController.GetSession)
		admin.PATCH("/session", sessionController.UpdateSession)
		admin.POST("/session/editing/:food_id", sessionController.StartEditing)
		admin.DELETE("/session/editing/:food_id", sessionController.StopEditing)

		admin.GET("/categories", categoryController.GetAllCategories)
		admin.POST("/categories", categoryController.CreateCategory)
		admin.PATCH("/categories/:cat_id", categoryController.UpdateCategory)
		admin.DELETE("/categories/:cat_id", categoryController.DeleteCategory)
		admin.GET("/categories/:cat_id/foods", foodController.GetFoodsByCategory)
		admin.POST("/categories/:cat_id/foods", foodController.CreateFood)

		admin.GET("/foods/:food_id", foodController.GetFoodByID)
		admin.PATCH("/foods/:food_id", foodController.UpdateFood)
		admin.DELETE("/foods/:food_id", foodController.DeleteFood)
		admin.GET("/foods/:food_id/addons", addOnController.GetAddOns)
		admin.POST("/foods/:food_id/addons", addOnController.CreateAddOn)

		admin.PATCH("/addons/:addon_id", addOnController.UpdateAddOn)
		admin.DELETE("/addons/:addon_id", addOnController.DeleteAddOn)

		admin.GET("/analytics/overview", analyticsController.Overview)
		admin.GET("/analytics/monthly", analyticsController.MonthlySummary)
		admin.GET("/analytics/weekday", analyticsController.WeekdayAnalysis)
		admin.GET("/analytics/daily", analyticsController.DailyInsight)
		admin.GET("/analytics/charts/:chart", analyticsController.Chart)

		admin.GET("/reports/monthly.pdf", analyticsController.MonthlyPDF)
		admin.GET("/reports/daily.xlsx", analyticsController.DailyXLSX)
	}

	ws := r.Group("/admin/events")
	ws.Use(middlewares.WebSocketAuthMiddleware(deps.Sessions))
	{
		ws.GET("/ws", eventsController.Stream)
	}

	return r, nil
}
