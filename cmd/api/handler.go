package api

import (
	activityUsecase "altitude-backend/internal/activity/usecase"
	dashboardUsecase "altitude-backend/internal/dashboard/usecase"
	"altitude-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// Handler owns the gin engine and route wiring.
type Handler struct {
	engine *gin.Engine
}

// NewHandler builds the HTTP surface over the use cases.
func NewHandler(summaryUc activityUsecase.SummaryUsecase, dashboardQueries dashboardUsecase.DashboardQueries, cfg *config.Config) *Handler {
	engine := gin.Default()
	SetupRoutes(engine, summaryUc, dashboardQueries, cfg)
	return &Handler{engine: engine}
}

// Start runs the HTTP server on the given address.
func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
