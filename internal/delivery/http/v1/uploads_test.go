package v1

import (
	"bytes"
	"context"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskboard/internal/media"
	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

type stubProfileService struct {
	services.ProfileService

	err  error
	last services.UpdateProfileParams
}

func (s *stubProfileService) UpdateProfile(_ context.Context, params services.UpdateProfileParams) (*services.ProfileView, error) {
	s.last = params
	if s.err != nil {
		return nil, s.err
	}
	return &services.ProfileView{}, nil
}

func newMediaHandler(t *testing.T, svc Services) (*handlerImpl, string) {
	t.Helper()
	root := t.TempDir()
	store := media.NewStore(zerolog.Nop(), root)
	return New(zerolog.Nop(), svc, store, metrics.New(), Options{}).(*handlerImpl), root
}

func postMultipart(t *testing.T, router http.Handler, path string, fields map[string]string, fileField, filename string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func countFiles(t *testing.T, root string) int {
	t.Helper()

	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestHandleReportProgress_RejectedReportLeavesNoFile(t *testing.T) {
	tasks := &stubTaskService{
		detail:    &services.TaskDetail{Task: models.Task{ID: 1}},
		reportErr: &services.ValidationError{Fields: map[string]string{"comment": "required"}},
	}
	h, root := newMediaHandler(t, Services{Tasks: tasks})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/reportar-avance/:id/", h.HandleReportProgress)
	})

	rec := postMultipart(t, router, "/reportar-avance/1/", map[string]string{"comment": ""}, "attachment", "receipt.pdf")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.True(t, tasks.reportCalled)
	assert.NotEmpty(t, tasks.lastReport.Attachment)
	assert.Equal(t, 0, countFiles(t, root))
}

func TestHandleReportProgress_DeniedReportLeavesNoFile(t *testing.T) {
	tasks := &stubTaskService{
		detail:    &services.TaskDetail{Task: models.Task{ID: 1}},
		reportErr: services.ErrForbidden,
	}
	h, root := newMediaHandler(t, Services{Tasks: tasks})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/reportar-avance/:id/", h.HandleReportProgress)
	})

	rec := postMultipart(t, router, "/reportar-avance/1/", map[string]string{"comment": "paid"}, "attachment", "receipt.pdf")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, countFiles(t, root))
}

func TestHandleReportProgress_KeepsAcceptedFile(t *testing.T) {
	tasks := &stubTaskService{detail: &services.TaskDetail{Task: models.Task{ID: 1}}}
	h, root := newMediaHandler(t, Services{Tasks: tasks})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/reportar-avance/:id/", h.HandleReportProgress)
	})

	rec := postMultipart(t, router, "/reportar-avance/1/", map[string]string{"comment": "paid"}, "attachment", "receipt.pdf")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, countFiles(t, root))
}

func TestHandleUpdateProfile_PhotoOnlyKeepsIdentity(t *testing.T) {
	profiles := &stubProfileService{}
	h, root := newMediaHandler(t, Services{Profiles: profiles})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/perfil/", h.HandleUpdateProfile)
	})

	rec := postMultipart(t, router, "/perfil/", nil, "image", "me.jpg")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, profiles.last.Email)
	assert.Nil(t, profiles.last.FirstName)
	assert.Nil(t, profiles.last.LastName)
	assert.NotEmpty(t, profiles.last.Image)
	assert.Equal(t, 1, countFiles(t, root))
}

func TestHandleUpdateProfile_SubmittedFieldsArePassed(t *testing.T) {
	profiles := &stubProfileService{}
	h, _ := newMediaHandler(t, Services{Profiles: profiles})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/perfil/", h.HandleUpdateProfile)
	})

	rec := postMultipart(t, router, "/perfil/", map[string]string{"email": "", "first_name": "Ana"}, "", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotNil(t, profiles.last.Email)
	assert.Empty(t, *profiles.last.Email)
	require.NotNil(t, profiles.last.FirstName)
	assert.Equal(t, "Ana", *profiles.last.FirstName)
	assert.Nil(t, profiles.last.LastName)
}

func TestHandleUpdateProfile_RejectedUpdateLeavesNoFile(t *testing.T) {
	profiles := &stubProfileService{
		err: &services.ValidationError{Fields: map[string]string{"email": "invalid address"}},
	}
	h, root := newMediaHandler(t, Services{Profiles: profiles})
	router := newTestRouter(h, func(r gin.IRouter) {
		r.POST("/perfil/", h.HandleUpdateProfile)
	})

	rec := postMultipart(t, router, "/perfil/", map[string]string{"email": "nope"}, "image", "me.jpg")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, countFiles(t, root))
}
