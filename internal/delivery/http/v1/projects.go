package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const projectsPath = "/proyectos/"

type projectRequest struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Budget      string   `json:"budget" form:"budget"`
	StartDate   string   `json:"start_date" form:"start_date"`
	EndDate     string   `json:"end_date" form:"end_date"`
	Status      string   `json:"status" form:"status"`
	TeamIDs     []string `json:"team" form:"team"`
}

func (r *projectRequest) params(actorID string) (services.ProjectParams, error) {
	fields := make(map[string]string)
	params := services.ProjectParams{
		ActorID:     actorID,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Budget:      decimal.Zero,
		Status:      models.ProjectStatus(r.Status),
		TeamIDs:     r.TeamIDs,
	}

	if r.Budget != "" {
		budget, err := decimal.NewFromString(r.Budget)
		if err != nil {
			fields["budget"] = "invalid amount"
		} else {
			params.Budget = budget
		}
	}
	if r.StartDate != "" {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			fields["start_date"] = "invalid date"
		} else {
			params.StartDate = &start
		}
	}
	if r.EndDate != "" {
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			fields["end_date"] = "invalid date"
		} else {
			params.EndDate = &end
		}
	}

	if len(fields) > 0 {
		return params, &services.ValidationError{Fields: fields}
	}
	return params, nil
}

func (h *handlerImpl) bindProjectParams(c *gin.Context) (services.ProjectParams, bool) {
	var req projectRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return services.ProjectParams{}, false
	}
	if req.Status != "" {
		if _, err := models.ParseProjectStatus(req.Status); err != nil {
			abort(c, newBadRequestError(errUnknownStatus.Error()))
			return services.ProjectParams{}, false
		}
	}

	params, err := req.params(currentUserID(c))
	if err != nil {
		abort(c, newValidationError(err))
		return services.ProjectParams{}, false
	}
	return params, true
}

type projectSummaryView struct {
	projectView
	IsOwner bool `json:"is_owner"`
}

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	actorID := currentUserID(c)
	summaries, err := h.projects.ListProjects(c, actorID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	views := make([]projectSummaryView, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		views[i] = projectSummaryView{
			projectView: newProjectView(&s.Project, &s.Metrics),
			IsOwner:     s.Project.IsOwner(actorID),
		}
	}
	c.JSON(http.StatusOK, gin.H{"projects": views})
}

type projectFormResponse struct {
	Project  *projectView `json:"project,omitempty"`
	Team     []userView   `json:"team"`
	Statuses []statusView `json:"statuses"`
}

func (h *handlerImpl) projectForm(c *gin.Context, project *models.Project) {
	opts, err := h.tasks.TaskFormOptions(c, currentUserID(c), nil)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	resp := projectFormResponse{
		Team:     newUserViews(opts.Collaborators),
		Statuses: make([]statusView, len(models.ProjectStatuses)),
	}
	for i, s := range models.ProjectStatuses {
		resp.Statuses[i] = statusView{Value: string(s), Label: s.Label()}
	}
	if project != nil {
		v := newProjectView(project, nil)
		resp.Project = &v
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlerImpl) HandleProjectForm(c *gin.Context) {
	h.projectForm(c, nil)
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	params, ok := h.bindProjectParams(c)
	if !ok {
		return
	}

	project, err := h.projects.CreateProject(c, params)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	h.logger.Debug().
		Int64("project_id", project.ID).
		Msg("created project via form")
	h.redirect(c, projectsPath)
}

type projectDetailResponse struct {
	Project projectView `json:"project"`
	Tasks   []taskView  `json:"tasks"`
	CanEdit bool        `json:"can_edit"`
}

func (h *handlerImpl) HandleProjectDetail(c *gin.Context) {
	projectID, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, err := h.projects.GetProject(c, currentUserID(c), projectID)
	if err != nil {
		if isDenied(err) {
			h.redirect(c, projectsPath)
			return
		}
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, projectDetailResponse{
		Project: newProjectView(&detail.Project, &detail.Metrics),
		Tasks:   newTaskViews(detail.Tasks),
		CanEdit: detail.CanEdit,
	})
}

// ownedProject loads a project for its owner. Anybody else is sent
// back to the project list.
func (h *handlerImpl) ownedProject(c *gin.Context) (*models.Project, bool) {
	projectID, ok := h.paramID(c)
	if !ok {
		return nil, false
	}

	project, err := h.projects.GetOwnedProject(c, currentUserID(c), projectID)
	if err != nil {
		if isDenied(err) {
			h.redirect(c, projectsPath)
			return nil, false
		}
		abortWithServiceError(c, err)
		return nil, false
	}
	return project, true
}

func (h *handlerImpl) HandleEditProjectForm(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	h.projectForm(c, project)
}

func (h *handlerImpl) HandleUpdateProject(c *gin.Context) {
	projectID, ok := h.paramID(c)
	if !ok {
		return
	}
	params, ok := h.bindProjectParams(c)
	if !ok {
		return
	}

	_, err := h.projects.UpdateProject(c, projectID, params)
	if err != nil && !isDenied(err) {
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, projectsPath)
}

func (h *handlerImpl) HandleDeleteProjectForm(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": newProjectView(project, nil)})
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	projectID, ok := h.paramID(c)
	if !ok {
		return
	}

	err := h.projects.DeleteProject(c, currentUserID(c), projectID)
	if err != nil && !isDenied(err) {
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, projectsPath)
}
