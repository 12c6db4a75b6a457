package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Referral *handlers.ReferralHandler
	Admin    *handlers.AdminHandler
	Account  *handlers.AccountHandler
	Events   *handlers.EventStreamHandler
}

type Options struct {
	CORSOrigins  []string
	EnforceRoles bool
	Tokens       middleware.TokenParser
	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

func New(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/")
	api.Use(middleware.OptionalAuth(opts.Tokens))

	user := []gin.HandlerFunc{}
	admin := []gin.HandlerFunc{}
	if opts.EnforceRoles {
		api.Use(middleware.EnforceRoles())
		user = append(user, middleware.RequireUser())
		admin = append(admin, middleware.RequireAdmin())
	}

	api.POST("/login/google", h.Account.LoginGoogle)
	api.GET("/verify/:token", h.Account.Verify)
	api.GET("/services", h.Account.Services)

	u := api.Group("/", user...)
	{
		u.GET("/user/data", h.Account.UserData)
		u.POST("/user/profile", h.Account.UpdateProfile)
		u.POST("/referral/submit", h.Referral.Submit)
	}

	a := api.Group("/", admin...)
	{
		a.POST("/referral/status", h.Referral.SetStatus)
		a.POST("/referral/reminder", h.Referral.SetReminder)
		a.GET("/admin/data", h.Admin.AdminData)
		a.GET("/admin/referrals", h.Admin.ListReferrals)
		a.GET("/admin/reminders/due", h.Admin.DueReminders)
		a.GET("/admin/export.csv", h.Admin.ExportCSV)
		a.GET("/admin/export.xlsx", h.Admin.ExportXLSX)
		if h.Events != nil {
			a.GET("/admin/events", h.Events.Stream)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
