package router

import (
	"net/http"

	"question-bank/internal/ai"
	"question-bank/internal/config"
	"question-bank/internal/credits"
	"question-bank/internal/handler"
	"question-bank/internal/middleware"
	"question-bank/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine and wires every handler.
func SetupRouter(cfg *config.Config, db *gorm.DB, aiClient *ai.Client) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	creditsService := credits.NewService(credits.NewGormStore(db))

	creditsHandler := handler.NewCreditsHandler(creditsService, cfg.App.LedgerPageSize)
	profileHandler := handler.NewProfileHandler(db)
	questionHandler := handler.NewQuestionHandler(db, cfg.App.PageSize)
	setHandler := handler.NewSetHandler(db)
	exportHandler := handler.NewExportHandler(db)
	storageHandler := handler.NewStorageHandler(cfg.Storage)
	aiHandler := handler.NewAIHandler(db, aiClient, storageHandler, cfg.AI.RateLimitPerMinute)

	// ====== API ======
	api := r.Group("/api")

	// signed download links carry their own credential
	api.GET("/storage/file", storageHandler.ServeFile)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db, cfg.App.DefaultCredits))

	protected.GET("/me", handler.GetMe)

	protected.GET("/credits", creditsHandler.GetCredits)
	protected.POST("/credits/deduct", creditsHandler.Deduct)

	protected.POST("/questions", questionHandler.Create)
	protected.GET("/questions", questionHandler.List)
	protected.GET("/questions/stats", questionHandler.Stats)
	protected.PUT("/questions/:id", questionHandler.Update)
	protected.DELETE("/questions/:id", questionHandler.Delete)

	protected.POST("/sets", setHandler.Create)
	protected.GET("/sets", setHandler.List)
	protected.POST("/sets/:id/duplicate", setHandler.Duplicate)
	protected.POST("/sets/batch", setHandler.BatchUpload)
	protected.GET("/sets/:id/export", exportHandler.ExportSet)

	protected.POST("/storage/upload", storageHandler.Upload)
	protected.POST("/storage/download", storageHandler.CreateDownloadURL)

	protected.POST("/ai/extract", aiHandler.Extract)
	protected.GET("/ai/status", aiHandler.Status)

	// moderator and admin
	elevated := protected.Group("")
	elevated.Use(middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
	elevated.POST("/sets/:id/share", setHandler.Share)
	elevated.POST("/sets/merge", setHandler.Merge)

	// admin only
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", profileHandler.ListUsers)
	admin.POST("/users/role", profileHandler.UpdateRole)
	admin.POST("/credits/allocate", creditsHandler.Allocate)
	admin.GET("/credits/ledger", creditsHandler.Ledger)

	return r
}
