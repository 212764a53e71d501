package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/handler"
	"github.com/stemsi/acequiz-backend/internal/middleware"
	"github.com/stemsi/acequiz-backend/internal/response"
)

// Certificate lookups allowed per client IP per minute.
const certificateLookupsPerMinute = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Portal      *handler.PortalHandler
	Exam        *handler.ExamHandler
	Certificate *handler.CertificateHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Brotli())

	// Candidate photos are stored under UUID names and never change.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Selection ──────────────────────────────────────────────────
	portal := api.Group("/portal")
	{
		portal.GET("", handlers.Portal.GetPortal)
		portal.POST("/identity", handlers.Portal.SubmitIdentity)
		portal.POST("/photo", handlers.Portal.UploadPhoto)
		portal.POST("/path", handlers.Portal.ChoosePath)
		portal.POST("/class-board", handlers.Portal.ChooseClassAndBoard)
		portal.POST("/subject", handlers.Portal.ChooseSubject)
		portal.POST("/material-type", handlers.Portal.ChooseMaterialType)
		portal.POST("/question-set", handlers.Portal.SelectQuestionSet)
		portal.POST("/access", handlers.Portal.Authenticate)
		portal.POST("/back", handlers.Portal.GoBack)
		portal.POST("/restart", handlers.Portal.Restart)
	}
	api.GET("/question-sets", handlers.Portal.ListQuestionSets)

	// ─── 2. Exam ───────────────────────────────────────────────────────
	exam := api.Group("/exam")
	{
		exam.GET("", handlers.Exam.GetExam)
		exam.POST("/answers", handlers.Exam.SelectAnswer)
		exam.POST("/navigate", handlers.Exam.Navigate)
		exam.POST("/finish", handlers.Exam.Finish)
		exam.GET("/result", handlers.Exam.GetResult)
		exam.GET("/certificate", handlers.Exam.GetCertificate)
	}

	// ─── 3. Certificates ───────────────────────────────────────────────
	certs := api.Group("/certificates")
	certs.Use(middleware.NewRateLimiter(certificateLookupsPerMinute, time.Minute).Middleware())
	{
		certs.GET("", handlers.Certificate.ListByCandidate)
		certs.GET("/verify", handlers.Certificate.Verify)
		certs.GET("/:serial", handlers.Certificate.GetBySerial)
	}

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	router.GET("/ws/v1/exam/stream", handlers.WS.ExamStream)

	return router
}
