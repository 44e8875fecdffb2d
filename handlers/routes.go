package handlers

import (
	"github.com/tech-arch1tect/sessiond/config"
	jwtmw "github.com/tech-arch1tect/sessiond/middleware/jwt"
	"github.com/tech-arch1tect/sessiond/middleware/originguard"
	"github.com/tech-arch1tect/sessiond/middleware/ratelimit"
	"github.com/tech-arch1tect/sessiond/server"
	jwtsvc "github.com/tech-arch1tect/sessiond/services/jwt"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"go.uber.org/fx"
)

var Options = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewUserHandler),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(srv *server.Server, cfg *config.Config, authH *AuthHandler, userH *UserHandler, codec *jwtsvc.Service, logger *logging.Service) {
	srv.Get("/health", Health)

	ipLimiter := ratelimit.Middleware(&ratelimit.Config{
		Rate:   cfg.RateLimit.IPRate,
		Period: cfg.RateLimit.IPPeriod,
	})

	login := srv.Group("/login")
	login.Use(ipLimiter)
	login.POST("/user", authH.Login)
	login.POST("/admin", authH.AdminLogin, originguard.RequireAllowedOrigin(cfg.Admin.AllowedIPs, logger))
	login.GET("/refresh", authH.Refresh)
	login.GET("/logout", authH.Logout)

	srv.Post("/users", userH.Create)
	srv.Get("/users", userH.List)
	srv.Get("/users/:id", userH.Get, jwtmw.RequireJWT(codec))
}
