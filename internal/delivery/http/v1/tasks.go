package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/media"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

type boardResponse struct {
	Tasks      []taskView   `json:"tasks"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
	Today      string       `json:"today"`
	Filters    boardFilters `json:"filters"`
}

type boardFilters struct {
	Search    string `json:"search" form:"search"`
	Status    string `json:"filter" form:"filter"`
	When      string `json:"when" form:"when"`
	Ownership string `json:"ownership" form:"ownership"`
	Page      int    `json:"-" form:"page"`
}

func (h *handlerImpl) HandleBoard(c *gin.Context) {
	var filters boardFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.ListTasksParams{
		ActorID: currentUserID(c),
		Search:  filters.Search,
		Page:    filters.Page,
	}
	if filters.Status != "" {
		status, err := models.ParseTaskStatus(filters.Status)
		if err != nil {
			abort(c, newBadRequestError(errUnknownStatus.Error()))
			return
		}
		params.Status = &status
	}
	when, ok := services.ParseTimeBucket(filters.When)
	if !ok {
		abort(c, newBadRequestError("unknown time filter"))
		return
	}
	params.When = when
	ownership, ok := services.ParseOwnership(filters.Ownership)
	if !ok {
		abort(c, newBadRequestError("unknown ownership filter"))
		return
	}
	params.Ownership = ownership

	page, err := h.tasks.ListTasks(c, params)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, boardResponse{
		Tasks:      newTaskViews(page.Tasks),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Today:      page.Today.Format(dateLayout),
		Filters:    filters,
	})
}

type taskRequest struct {
	Title           string   `json:"title" form:"title"`
	Description     string   `json:"description" form:"description"`
	ProjectID       string   `json:"project_id" form:"project_id"`
	ResponsibleID   string   `json:"responsible_id" form:"responsible_id"`
	EstimatedCost   string   `json:"estimated_cost" form:"estimated_cost"`
	TargetDate      string   `json:"target_date" form:"target_date"`
	Status          string   `json:"status" form:"status"`
	Progress        string   `json:"progress" form:"progress"`
	Observations    string   `json:"observations" form:"observations"`
	CollaboratorIDs []string `json:"collaborators" form:"collaborators"`
	TagIDs          []int64  `json:"tags" form:"tags"`
}

// input converts the raw form into service input. Malformed values
// are reported per field.
func (r *taskRequest) input() (services.TaskInput, error) {
	fields := make(map[string]string)
	in := services.TaskInput{
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		Status:          models.TaskStatus(r.Status),
		Progress:        r.Progress,
		Observations:    r.Observations,
		CollaboratorIDs: r.CollaboratorIDs,
		TagIDs:          r.TagIDs,
	}

	if r.ProjectID != "" {
		id, err := strconv.ParseInt(r.ProjectID, 10, 64)
		if err != nil {
			fields["project_id"] = "invalid id"
		} else {
			in.ProjectID = &id
		}
	}
	if r.ResponsibleID != "" {
		responsible := r.ResponsibleID
		in.ResponsibleID = &responsible
	}
	if r.EstimatedCost != "" {
		cost, err := decimal.NewFromString(r.EstimatedCost)
		if err != nil {
			fields["estimated_cost"] = "invalid amount"
		} else {
			in.EstimatedCost = &cost
		}
	}
	if r.TargetDate != "" {
		date, err := time.Parse(dateLayout, r.TargetDate)
		if err != nil {
			fields["target_date"] = "invalid date"
		} else {
			in.TargetDate = date
		}
	}

	if len(fields) > 0 {
		return in, &services.ValidationError{Fields: fields}
	}
	return in, nil
}

func (h *handlerImpl) bindTaskInput(c *gin.Context) (services.TaskInput, bool) {
	var req taskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return services.TaskInput{}, false
	}
	if req.Status != "" {
		if _, err := models.ParseTaskStatus(req.Status); err != nil {
			abort(c, newBadRequestError(errUnknownStatus.Error()))
			return services.TaskInput{}, false
		}
	}

	in, err := req.input()
	if err != nil {
		abort(c, newValidationError(err))
		return services.TaskInput{}, false
	}
	return in, true
}

type taskFormResponse struct {
	Task          *taskView     `json:"task,omitempty"`
	Tags          []tagView     `json:"tags"`
	Collaborators []userView    `json:"collaborators"`
	Responsibles  []userView    `json:"responsibles"`
	Projects      []projectView `json:"projects"`
	Statuses      []statusView  `json:"statuses"`
}

func (h *handlerImpl) taskForm(c *gin.Context, projectID *int64, task *models.Task) (*taskFormResponse, bool) {
	opts, err := h.tasks.TaskFormOptions(c, currentUserID(c), projectID)
	if err != nil {
		if isDenied(err) {
			h.redirect(c, h.opts.FallbackPath)
			return nil, false
		}
		abortWithServiceError(c, err)
		return nil, false
	}

	resp := &taskFormResponse{
		Tags:          newTagViews(opts.Tags),
		Collaborators: newUserViews(opts.Collaborators),
		Responsibles:  newUserViews(opts.Responsibles),
		Projects:      newProjectViews(opts.Projects),
		Statuses:      taskStatusViews(),
	}
	if task != nil {
		v := newTaskView(task)
		resp.Task = &v
	}
	return resp, true
}

// HandleTaskForm lists the choices of the task form. With ?proyecto=
// the responsible candidates shrink to that project's members.
func (h *handlerImpl) HandleTaskForm(c *gin.Context) {
	var projectID *int64
	if raw := c.Query("proyecto"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abort(c, newBadRequestError(errInvalidID.Error()))
			return
		}
		projectID = &id
	}

	resp, ok := h.taskForm(c, projectID, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	in, ok := h.bindTaskInput(c)
	if !ok {
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		ActorID:   currentUserID(c),
		TaskInput: in,
	})
	if err != nil {
		if isDenied(err) {
			h.redirect(c, h.opts.FallbackPath)
			return
		}
		abortWithServiceError(c, err)
		return
	}

	h.logger.Debug().
		Int64("task_id", task.ID).
		Msg("created task via form")
	h.redirect(c, h.opts.FallbackPath)
}

func (h *handlerImpl) HandleEditTaskForm(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, ok := h.taskDetail(c, taskID)
	if !ok {
		return
	}
	if !detail.CanEdit {
		h.redirect(c, reportPath(taskID))
		return
	}

	resp, ok := h.taskForm(c, detail.Task.ProjectID, &detail.Task)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleUpdateTask saves the edit form. Users other than the owner
// land on the progress report of the task instead.
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}
	in, ok := h.bindTaskInput(c)
	if !ok {
		return
	}

	_, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ActorID:   currentUserID(c),
		TaskID:    taskID,
		TaskInput: in,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			h.redirect(c, reportPath(taskID))
		case errors.Is(err, services.ErrForbidden):
			h.redirect(c, h.opts.FallbackPath)
		default:
			abortWithServiceError(c, err)
		}
		return
	}
	h.redirect(c, h.opts.FallbackPath)
}

func (h *handlerImpl) HandleDeleteTaskForm(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, ok := h.taskDetail(c, taskID)
	if !ok {
		return
	}
	if !detail.CanEdit {
		h.redirect(c, h.opts.FallbackPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": newTaskView(&detail.Task)})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, currentUserID(c), taskID)
	if err != nil && !isDenied(err) {
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, h.opts.FallbackPath)
}

type taskDetailResponse struct {
	Task    taskView      `json:"task"`
	History []historyView `json:"history"`
	CanEdit bool          `json:"can_edit"`
}

func (h *handlerImpl) HandleTaskDetail(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, ok := h.taskDetail(c, taskID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, taskDetailResponse{
		Task:    newTaskView(&detail.Task),
		History: h.newHistoryViews(detail.History),
		CanEdit: detail.CanEdit,
	})
}

// HandleSetTaskStatus is the one-click transition. Unknown statuses
// are rejected before anything is loaded.
func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}
	status, err := models.ParseTaskStatus(c.Param("status"))
	if err != nil {
		h.logger.Warn().
			Str("status", c.Param("status")).
			Msg("unknown status")
		abort(c, newBadRequestError(errUnknownStatus.Error()))
		return
	}

	_, err = h.tasks.SetTaskStatus(c, currentUserID(c), taskID, status)
	if err != nil && !isDenied(err) {
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, h.opts.FallbackPath)
}

func (h *handlerImpl) HandleReportForm(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, ok := h.taskDetail(c, taskID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":     newTaskView(&detail.Task),
		"statuses": taskStatusViews(),
	})
}

type reportRequest struct {
	Comment string `form:"comment"`
	Amount  string `form:"amount"`
	Status  string `form:"status"`
}

func (h *handlerImpl) HandleReportProgress(c *gin.Context) {
	taskID, ok := h.paramID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize)

	var req reportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.ReportProgressParams{
		ActorID: currentUserID(c),
		TaskID:  taskID,
		Comment: req.Comment,
		Amount:  decimal.Zero,
	}
	if req.Status != "" {
		status, err := models.ParseTaskStatus(req.Status)
		if err != nil {
			abort(c, newBadRequestError(errUnknownStatus.Error()))
			return
		}
		params.Status = &status
	}
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			abort(c, newValidationError(&services.ValidationError{
				Fields: map[string]string{"amount": "invalid amount"},
			}))
			return
		}
		params.Amount = amount
	}

	// Only users who see the task may upload.
	if _, ok = h.taskDetail(c, taskID); !ok {
		return
	}
	attachment, ok := h.saveUpload(c, "attachment", media.DirReports)
	if !ok {
		return
	}
	params.Attachment = attachment

	_, err := h.tasks.ReportProgress(c, params)
	if err != nil {
		h.discardUpload(attachment)
		if isDenied(err) {
			h.redirect(c, h.opts.FallbackPath)
			return
		}
		abortWithServiceError(c, err)
		return
	}
	h.redirect(c, h.opts.FallbackPath)
}

// taskDetail loads a task visible to the current user. Anybody else
// is sent back to the board.
func (h *handlerImpl) taskDetail(c *gin.Context, taskID int64) (*services.TaskDetail, bool) {
	detail, err := h.tasks.GetTaskDetail(c, currentUserID(c), taskID)
	if err != nil {
		if isDenied(err) {
			h.redirect(c, h.opts.FallbackPath)
			return nil, false
		}
		abortWithServiceError(c, err)
		return nil, false
	}
	return detail, true
}

// saveUpload stores the optional file of a multipart form field.
func (h *handlerImpl) saveUpload(c *gin.Context, field, dir string) (string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abort(c, newAPIError(http.StatusRequestEntityTooLarge, errFileTooLarge.Error()))
			return "", false
		}
		h.logger.Error().
			Err(err).
			Str("field", field).
			Msg("failed to read uploaded file")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return "", false
	}

	rel, err := h.media.Save(fh, dir)
	if err != nil {
		if errors.Is(err, media.ErrEmptyFile) {
			return "", true
		}
		h.logger.Error().
			Err(err).
			Str("field", field).
			Msg("failed to save uploaded file")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return "", false
	}
	return rel, true
}

// discardUpload removes a file saved for a request that was then
// rejected.
func (h *handlerImpl) discardUpload(rel string) {
	if err := h.media.Remove(rel); err != nil {
		h.logger.Warn().
			Err(err).
			Str("path", rel).
			Msg("failed to remove rejected upload")
	}
}

func (h *handlerImpl) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abort(c, newBadRequestError(errInvalidID.Error()))
		return 0, false
	}
	return id, true
}

func (h *handlerImpl) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

func reportPath(taskID int64) string {
	return "/reportar-avance/" + strconv.FormatInt(taskID, 10) + "/"
}
