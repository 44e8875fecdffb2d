package app

import (
	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/database"
	"github.com/tech-arch1tect/sessiond/handlers"
	"github.com/tech-arch1tect/sessiond/server"
	"github.com/tech-arch1tect/sessiond/services/auth"
	"github.com/tech-arch1tect/sessiond/services/jwt"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"github.com/tech-arch1tect/sessiond/services/refreshtoken"
	"github.com/tech-arch1tect/sessiond/services/session"
	"github.com/tech-arch1tect/sessiond/services/user"
	"go.uber.org/fx"
)

// New assembles the full application graph. A nil cfg loads configuration from
// the environment.
func New(cfg *config.Config) *fx.App {
	return fx.New(Options(cfg)...)
}

func Options(cfg *config.Config) []fx.Option {
	return []fx.Option{
		config.NewProvider(cfg),
		fx.Supply(database.WithModels(&user.User{}, &refreshtoken.RefreshToken{})),
		logging.Module,
		database.Module,
		user.Options,
		auth.Options,
		jwt.Options,
		refreshtoken.Options,
		session.Options,
		server.Options,
		handlers.Options,
	}
}
