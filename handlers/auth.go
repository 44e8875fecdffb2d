package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"github.com/tech-arch1tect/sessiond/services/session"
)

type AuthHandler struct {
	sessions *session.Manager
	cfg      *config.Config
	logger   *logging.Service
}

func NewAuthHandler(sessions *session.Manager, cfg *config.Config, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

type MessageResponse struct {
	Detail string `json:"detail"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	pair, err := h.sessions.Login(req.Username, req.Password, c.Request().UserAgent())
	if err != nil {
		return mapServiceError(err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}

// AdminLogin shares login semantics; the origin allow-list guard wraps this
// route before the credential check runs.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.Login(c)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	token := h.refreshTokenFromCookie(c)

	pair, err := h.sessions.Refresh(token, c.Request().UserAgent())
	if err != nil {
		return mapServiceError(err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token := h.refreshTokenFromCookie(c)

	userID, err := h.sessions.Logout(token)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Detail: fmt.Sprintf("User %d token revoked", userID),
	})
}

func (h *AuthHandler) refreshTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(h.cfg.RefreshToken.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.RefreshToken.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.RefreshToken.CookieSecure,
		MaxAge:   int(h.cfg.RefreshToken.Expiry.Seconds()),
	})
}
