package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	"social-hub/infrastructure/configuration"
	"social-hub/infrastructure/logger"
	"social-hub/interfaces/middleware"
	"social-hub/usecase"
)

type IConnectHandler interface {
	Begin(c *gin.Context)
	Callback(c *gin.Context)
	Disconnect(c *gin.Context)
	Connections(c *gin.Context)
}

type ConnectHandler struct {
	connectUsecase usecase.IConnectUsecase
}

func NewConnectHandler(connectUsecase usecase.IConnectUsecase) IConnectHandler {
	return &ConnectHandler{connectUsecase: connectUsecase}
}

// Begin starts the authorization flow for a platform: it plants the pending
// authorization cookie and redirects the user agent to the provider.
func (h *ConnectHandler) Begin(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Authentication Required"})
		return
	}
	platform := c.Param("platform")

	instruction, err := h.connectUsecase.BeginConnect(userID, platform)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"platform": platform,
			"error":    err,
		}).Error("begin connect failed")
		c.JSON(statusFor(err), dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	setPendingCookie(c, instruction.Pending.CookieName(), instruction.CookieValue, int(model.PendingAuthTTL.Seconds()))
	c.Redirect(http.StatusFound, instruction.AuthURL)
}

// Callback consumes the provider redirect. The flow outcome is communicated
// to the settings UI via a query flag; the browser holds no bearer credential
// here, so errors redirect rather than render JSON.
func (h *ConnectHandler) Callback(c *gin.Context) {
	platform := c.Param("platform")
	state := c.Query("state")
	code := c.Query("code")

	cookieValue, _ := c.Cookie(model.PendingAuthCookieName(platform))

	conn, err := h.connectUsecase.CompleteConnect(c.Request.Context(), platform, state, code, cookieValue)

	// One-shot cookie: cleared whether the exchange worked or not.
	setPendingCookie(c, model.PendingAuthCookieName(platform), "", -1)

	settings := configuration.C.App.SettingsURL
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"platform": platform,
			"error":    err,
		}).Error("connect callback failed")
		c.Redirect(http.StatusFound, settings+"?connected=0&platform="+platform)
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"platform": platform,
		"user_id":  conn.UserID,
		"username": conn.Username,
	}).Info("platform connected")
	c.Redirect(http.StatusFound, settings+"?connected=1&platform="+platform)
}

func (h *ConnectHandler) Disconnect(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Authentication Required"})
		return
	}
	platform := c.Param("platform")

	if err := h.connectUsecase.Disconnect(c.Request.Context(), userID, platform); err != nil {
		c.JSON(statusFor(err), dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Disconnected"})
}

func (h *ConnectHandler) Connections(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Authentication Required"})
		return
	}

	statuses, err := h.connectUsecase.GetConnections(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success", Data: statuses})
}

func setPendingCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", !configuration.IsDevelopment(), true)
}
