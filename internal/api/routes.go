package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhik-roy/mtg-card-collection-app/internal/api/handlers"
	"github.com/abhik-roy/mtg-card-collection-app/internal/config"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

// Services bundles what the router hands to its handlers
type Services struct {
	Users       *services.UserService
	Cards       *services.CardService
	Collection  *services.CollectionService
	Watches     *services.WatchService
	Portfolio   *services.PortfolioService
	Snapshots   *services.SnapshotService
	PriceWorker *services.PriceWorker

	// DefaultUserID acts for requests without an X-User-ID header
	DefaultUserID uint
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

func SetupRouter(cfg config.ServerConfig, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	serveFrontend := cfg.FrontendDistPath != "" && dirExists(cfg.FrontendDistPath)

	// CORS configuration - configured origins or the local dev servers
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = defaultOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.UserIDHeader, requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	userHandler := handlers.NewUserHandler(svc.Users, svc.DefaultUserID)
	cardHandler := handlers.NewCardHandler(svc.Cards)
	collectionHandler := handlers.NewCollectionHandler(svc.Collection, svc.PriceWorker)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Snapshots)
	watchHandler := handlers.NewWatchHandler(svc.Watches)
	priceHandler := handlers.NewPriceHandler(svc.PriceWorker)

	api := router.Group("/api")
	{
		// Creating a user needs no acting user
		api.POST("/users", userHandler.CreateUser)

		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:id", cardHandler.GetCard)
			cards.GET("/:id/history", cardHandler.GetPriceHistory)
			cards.POST("/:id/liquidity", cardHandler.RecordLiquidity)
			cards.POST("/:id/refresh-price", priceHandler.RefreshCardPrice)
		}

		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
		}

		scoped := api.Group("", userHandler.ResolveUser())
		{
			scoped.GET("/users/me", userHandler.GetCurrentUser)

			collection := scoped.Group("/collection")
			{
				collection.GET("", collectionHandler.GetCollection)
				collection.POST("", collectionHandler.AddToCollection)
				collection.PUT("/:id", collectionHandler.UpdateCollectionItem)
				collection.DELETE("/:id", collectionHandler.DeleteCollectionItem)
				collection.POST("/refresh-prices", collectionHandler.RefreshPrices)
			}

			portfolio := scoped.Group("/portfolio")
			{
				portfolio.GET("/summary", portfolioHandler.GetSummary)
				portfolio.GET("/history", portfolioHandler.GetValueHistory)
				portfolio.POST("/snapshot", portfolioHandler.TakeSnapshot)
			}

			watches := scoped.Group("/watches")
			{
				watches.GET("", watchHandler.ListWatches)
				watches.POST("", watchHandler.CreateWatch)
				watches.DELETE("/:id", watchHandler.DeleteWatch)
			}
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		frontendPath := cfg.FrontendDistPath
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/vite.svg", filepath.Join(frontendPath, "vite.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
