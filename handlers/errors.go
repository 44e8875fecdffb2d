package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sessiond/services/auth"
	"github.com/tech-arch1tect/sessiond/services/jwt"
	"github.com/tech-arch1tect/sessiond/services/session"
	"github.com/tech-arch1tect/sessiond/services/user"
)

// mapServiceError translates service sentinel errors into transport status
// codes; everything unrecognized is an internal store failure.
func mapServiceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, session.ErrMissingToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
	case errors.Is(err, session.ErrTokenExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token is expired")
	case errors.Is(err, session.ErrTokenReuse):
		return echo.NewHTTPError(http.StatusUnauthorized, "Token already revoked")
	case errors.Is(err, jwt.ErrMalformedToken),
		errors.Is(err, jwt.ErrInvalidSignature),
		errors.Is(err, jwt.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, session.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
	case errors.Is(err, user.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, user.ErrDuplicateUser):
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
