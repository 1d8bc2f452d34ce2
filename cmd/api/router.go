package api

import (
	"net/http"

	activityDelivery "altitude-backend/internal/activity/delivery"
	activityUsecase "altitude-backend/internal/activity/usecase"
	dashboardDelivery "altitude-backend/internal/dashboard/delivery"
	dashboardUsecase "altitude-backend/internal/dashboard/usecase"
	"altitude-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, summaryUc activityUsecase.SummaryUsecase, dashboardQueries dashboardUsecase.DashboardQueries, cfg *config.Config) {
	summaryHandler := activityDelivery.NewSummaryHandler(summaryUc)
	dashboardHandler := dashboardDelivery.NewDashboardHandler(dashboardQueries)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Summary trigger routes (cron-gated)
		summary := api.Group("/summary")
		summary.Use(activityDelivery.CronAuthMiddleware(cfg.CronSecret))
		{
			summary.GET("", summaryHandler.Trigger)
			summary.POST("", summaryHandler.TriggerPost)
			summary.GET("/weekly", summaryHandler.Weekly)
		}

		// Audit route (cron-gated; same credential, used manually)
		api.GET("/audit", activityDelivery.CronAuthMiddleware(cfg.CronSecret), summaryHandler.Audit)

		// Dashboard routes (read-only analytics)
		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", dashboardHandler.Overview)
			dashboard.GET("/weekly-trends", dashboardHandler.WeeklyTrends)
			dashboard.GET("/nap-analysis", dashboardHandler.NapAnalysis)
			dashboard.GET("/meal-analysis", dashboardHandler.MealAnalysis)
			dashboard.GET("/timeline", dashboardHandler.Timeline)
			dashboard.GET("/monthly-summary", dashboardHandler.MonthlySummary)
			dashboard.GET("/search", dashboardHandler.Search)
			dashboard.GET("/available-dates", dashboardHandler.AvailableDates)
		}
	}
}
