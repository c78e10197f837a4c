package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-hub/domain/dto"
	"social-hub/interfaces/middleware"
	"social-hub/usecase"
)

type IContentHandler interface {
	Delete(c *gin.Context)
	Like(c *gin.Context)
}

type ContentHandler struct {
	contentUsecase usecase.IContentUsecase
}

func NewContentHandler(contentUsecase usecase.IContentUsecase) IContentHandler {
	return &ContentHandler{contentUsecase: contentUsecase}
}

func (h *ContentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Authentication Required"})
		return
	}
	contentID := c.Param("contentId")

	if err := h.contentUsecase.Delete(c.Request.Context(), userID, contentID); err != nil {
		c.JSON(statusFor(err), dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Deleted"})
}

func (h *ContentHandler) Like(c *gin.Context) {
	contentID := c.Param("contentId")

	if err := h.contentUsecase.IncrementLikes(c.Request.Context(), contentID); err != nil {
		c.JSON(statusFor(err), dto.Res{ResponseCode: "404", ResponseMessage: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Liked"})
}
