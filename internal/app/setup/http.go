package setup

import (
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/router"
	"github.com/gin-gonic/gin"
)

func InitializeRouter(deps *Dependencies, ucs *UseCases) *gin.Engine {
	if deps.Config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.New(router.Handlers{
		Referral: handlers.NewReferralHandler(ucs.ReferralUsecase),
		Admin:    handlers.NewAdminHandler(ucs.ReferralUsecase),
		Account:  handlers.NewAccountHandler(ucs.AccountUsecase, ucs.ReferralUsecase, nil),
		Events:   handlers.NewEventStreamHandler(deps.Bus),
	}, router.Options{
		CORSOrigins:  deps.Config.Auth.CORSOrigins,
		EnforceRoles: deps.Config.Auth.EnforceRoles,
		Tokens:       deps.Tokens,
		Gatherer:     deps.Registry,
		Logger:       deps.Logger,
	})
}
