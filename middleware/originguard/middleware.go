package originguard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"go.uber.org/zap"
)

var ErrOriginForbidden = errors.New("origin not allowed")

// CheckOrigin reports the remote address back when it is on the allow-list.
func CheckOrigin(remoteAddr string, allowed []string) (string, error) {
	for _, ip := range allowed {
		if remoteAddr == ip {
			return remoteAddr, nil
		}
	}
	return "", ErrOriginForbidden
}

// RequireAllowedOrigin gates a route on a static IP allow-list. Used for the
// admin login route only.
func RequireAllowedOrigin(allowed []string, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := CheckOrigin(c.RealIP(), allowed); err != nil {
				if logger != nil {
					logger.Warn("request blocked by origin allow-list",
						zap.String("remote_ip", c.RealIP()),
						zap.String("path", c.Request().URL.Path))
				}
				return echo.NewHTTPError(http.StatusForbidden, "Unreachable host")
			}
			return next(c)
		}
	}
}
