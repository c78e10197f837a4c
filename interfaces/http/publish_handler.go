package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	"social-hub/infrastructure/logger"
	"social-hub/interfaces/middleware"
	"social-hub/usecase"
)

type IPublishHandler interface {
	Publish(c *gin.Context)
}

type PublishHandler struct {
	publishUsecase usecase.IPublishUsecase
}

func NewPublishHandler(publishUsecase usecase.IPublishUsecase) IPublishHandler {
	return &PublishHandler{publishUsecase: publishUsecase}
}

// Publish fans one content item out to the requested platforms. Per-platform
// failures never fail the request: the response always enumerates every
// attempt so the client can show a per-platform breakdown.
func (h *PublishHandler) Publish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Authentication Required"})
		return
	}
	contentID := c.Param("contentId")

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	results, err := h.publishUsecase.Publish(c.Request.Context(), userID, contentID, req.Platforms)
	if err != nil {
		c.JSON(statusFor(err), dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	message := "All platforms published"
	if !model.AllSucceeded(results) {
		message = "Completed with failures"
	}
	c.JSON(http.StatusOK, dto.PublishResponse{Message: message, Results: results})
}
