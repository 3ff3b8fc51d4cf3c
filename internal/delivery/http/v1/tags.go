package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleTagForm(c *gin.Context) {
	tags, err := h.tags.ListTags(c, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags":    newTagViews(tags),
		"palette": paletteViews(h.tags.Palette()),
	})
}

type tagRequest struct {
	Name  string `json:"name" form:"name"`
	Color string `json:"color" form:"color"`
}

func (h *handlerImpl) HandleCreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	_, err := h.tags.CreateTag(c, currentUserID(c), req.Name, req.Color)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, "/crear-tarea/")
}
