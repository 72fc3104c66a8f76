package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/api/handlers"
	"github.com/andresuchdata/shopdash/backend-go/internal/api/middleware"
	"github.com/andresuchdata/shopdash/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Dashboard *service.DashboardService
	// Now overrides the clock used for default report periods
	Now func() time.Time
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger("/api/v1/health"))
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services != nil && services.Dashboard != nil {
		reportHandler := handlers.NewReportHandler(services.Dashboard, services.Now)

		apiGroup.POST("/refresh", reportHandler.Refresh)
		apiGroup.GET("/runs", reportHandler.GetRuns)
		apiGroup.GET("/facts", reportHandler.GetFacts)
		apiGroup.GET("/skus", reportHandler.GetSKUs)
		apiGroup.GET("/years", reportHandler.GetYears)

		reportGroup := apiGroup.Group("/reports")
		{
			reportGroup.GET("/monthly", reportHandler.GetMonthly)
			reportGroup.GET("/daily", reportHandler.GetDaily)
			reportGroup.GET("/trend", reportHandler.GetTrend)
			reportGroup.GET("/pnl", reportHandler.GetPnL)
			reportGroup.GET("/commission", reportHandler.GetCommission)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
