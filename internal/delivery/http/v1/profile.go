package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskboard/internal/media"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const profilePath = "/perfil/"

type profileResponse struct {
	User      userView  `json:"user"`
	Image     string    `json:"image"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *handlerImpl) newProfileResponse(view *services.ProfileView) profileResponse {
	return profileResponse{
		User:      *newUserView(&view.User),
		Image:     h.mediaURL(view.Profile.Image),
		UpdatedAt: view.Profile.UpdatedAt,
	}
}

func (h *handlerImpl) HandleGetProfile(c *gin.Context) {
	view, err := h.profiles.GetProfile(c, currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.newProfileResponse(view))
}

type profileRequest struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"max=254"`
}

// postFormValue returns nil when the form did not send key, so a
// picture-only submission keeps the stored names and email.
func postFormValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// HandleUpdateProfile saves the profile form. A new picture is
// optional and arrives as the "image" multipart field.
func (h *handlerImpl) HandleUpdateProfile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize)

	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	image, ok := h.saveUpload(c, "image", media.DirProfiles)
	if !ok {
		return
	}

	_, err := h.profiles.UpdateProfile(c, services.UpdateProfileParams{
		UserID:    currentUserID(c),
		FirstName: postFormValue(c, "first_name"),
		LastName:  postFormValue(c, "last_name"),
		Email:     postFormValue(c, "email"),
		Image:     image,
	})
	if err != nil {
		h.discardUpload(image)
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, profilePath)
}
