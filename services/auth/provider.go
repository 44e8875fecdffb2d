package auth

import (
	"github.com/tech-arch1tect/sessiond/services/user"
	"go.uber.org/fx"
)

func WireUserStore(authSvc *Service, users *user.Service) {
	authSvc.SetUserStore(users)
}

var Options = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *Service) user.PasswordHasher { return s }),
	fx.Invoke(WireUserStore),
)
