package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskboard/internal/services"
)

// HandleSearchUsers backs the user picker: ?q= matches username or
// email, ?pid= narrows the candidates to a project's members.
func (h *handlerImpl) HandleSearchUsers(c *gin.Context) {
	params := services.SearchUsersParams{Query: c.Query("q")}
	if raw := c.Query("pid"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abort(c, newBadRequestError(errInvalidID.Error()))
			return
		}
		params.ProjectID = &id
	}

	cards, err := h.users.SearchUsers(c, params)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": h.newUserCardViews(cards)})
}
