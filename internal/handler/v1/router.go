package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/metrics"
)

// NewRouter wires middleware, templates, static artifact serving, and
// every route the app exposes.
func NewRouter(cfg *config.Config, h *Handler, collector *metrics.Collector, log *zap.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Metrics(collector))

	r.LoadHTMLGlob(cfg.Server.TemplatesGlob)
	r.Static("/qr_codes", cfg.QR.ArtifactDir)

	r.GET("/", h.Index)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.RegisterSubmit)
	r.GET("/generate_qr/:id", h.GenerateQR)
	r.GET("/scan/:id", h.Scan)
	r.GET("/download/:id", h.Download)
	r.POST("/send_email/:id", h.SendEmail)
	r.POST("/verify/:id", h.VerifyPassword)
	r.GET("/edit/:id", h.EditForm)
	r.POST("/edit/:id", h.EditSubmit)
	r.GET("/find_hospital", h.FindHospital)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return r
}
