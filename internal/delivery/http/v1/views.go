package v1

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const dateLayout = time.DateOnly

type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func newUserView(u *models.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newUserViews(users []models.User) []userView {
	views := make([]userView, len(users))
	for i := range users {
		views[i] = *newUserView(&users[i])
	}
	return views
}

type tagView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func newTagViews(tags []models.Tag) []tagView {
	views := make([]tagView, len(tags))
	for i, t := range tags {
		views[i] = tagView{ID: t.ID, Name: t.Name, Color: string(t.Color)}
	}
	return views
}

type statusView struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type taskView struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	ProjectID     *int64           `json:"project_id"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	TargetDate    string           `json:"target_date"`
	ClosureDate   *string          `json:"closure_date"`
	Status        statusView       `json:"status"`
	Progress      string           `json:"progress"`
	Observations  string           `json:"observations"`
	Owner         *userView        `json:"owner"`
	Responsible   *userView        `json:"responsible"`
	Collaborators []userView       `json:"collaborators"`
	Tags          []tagView        `json:"tags"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func newTaskView(t *models.Task) taskView {
	v := taskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		ProjectID:     t.ProjectID,
		EstimatedCost: t.EstimatedCost,
		TargetDate:    t.TargetDate.Format(dateLayout),
		Status:        statusView{Value: string(t.Status), Label: t.Status.Label()},
		Progress:      t.Progress,
		Observations:  t.Observations,
		Owner:         newUserView(t.Owner),
		Responsible:   newUserView(t.Responsible),
		Collaborators: newUserViews(t.Collaborators),
		Tags:          newTagViews(t.Tags),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.ClosureDate != nil {
		closure := t.ClosureDate.Format(dateLayout)
		v.ClosureDate = &closure
	}
	return v
}

func newTaskViews(tasks []models.Task) []taskView {
	views := make([]taskView, len(tasks))
	for i := range tasks {
		views[i] = newTaskView(&tasks[i])
	}
	return views
}

type historyView struct {
	ID         int64           `json:"id"`
	TaskID     int64           `json:"task_id"`
	TaskTitle  string          `json:"task_title,omitempty"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Comment    string          `json:"comment"`
	Attachment string          `json:"attachment,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (h *handlerImpl) newHistoryViews(entries []models.HistoryEntry) []historyView {
	views := make([]historyView, len(entries))
	for i, e := range entries {
		views[i] = historyView{
			ID:         e.ID,
			TaskID:     e.TaskID,
			TaskTitle:  e.TaskTitle,
			UserID:     e.UserID,
			Username:   e.Username,
			Comment:    e.Comment,
			Attachment: h.mediaURL(e.Attachment),
			Amount:     e.Amount,
			CreatedAt:  e.CreatedAt,
		}
	}
	return views
}

type metricsView struct {
	Spent           decimal.Decimal `json:"spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	PercentComplete int             `json:"percent_complete"`
	TaskCount       int             `json:"task_count"`
	CompletedCount  int             `json:"completed_count"`
}

func newMetricsView(m models.ProjectMetrics) metricsView {
	return metricsView(m)
}

type projectView struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	StartDate   string          `json:"start_date"`
	EndDate     *string         `json:"end_date"`
	Status      statusView      `json:"status"`
	Owner       *userView       `json:"owner"`
	Team        []userView      `json:"team"`
	Metrics     *metricsView    `json:"metrics,omitempty"`
}

func newProjectView(p *models.Project, m *models.ProjectMetrics) projectView {
	v := projectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Budget:      p.Budget,
		StartDate:   p.StartDate.Format(dateLayout),
		Status:      statusView{Value: string(p.Status), Label: p.Status.Label()},
		Owner:       newUserView(p.Owner),
		Team:        newUserViews(p.Team),
	}
	if p.EndDate != nil {
		end := p.EndDate.Format(dateLayout)
		v.EndDate = &end
	}
	if m != nil {
		mv := newMetricsView(*m)
		v.Metrics = &mv
	}
	return v
}

func newProjectViews(projects []models.Project) []projectView {
	views := make([]projectView, len(projects))
	for i := range projects {
		views[i] = newProjectView(&projects[i], nil)
	}
	return views
}

func taskStatusViews() []statusView {
	views := make([]statusView, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		views[i] = statusView{Value: string(s), Label: s.Label()}
	}
	return views
}

func paletteViews(palette []models.PaletteColor) []statusView {
	views := make([]statusView, len(palette))
	for i, p := range palette {
		views[i] = statusView{Value: string(p.Color), Label: p.Label}
	}
	return views
}

type userCardView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Photo    string `json:"foto"`
}

func (h *handlerImpl) newUserCardViews(cards []services.UserCard) []userCardView {
	views := make([]userCardView, len(cards))
	for i, card := range cards {
		image := card.Image
		if image == "" {
			image = models.DefaultProfileImage
		}
		views[i] = userCardView{
			ID:       card.ID,
			Username: card.Username,
			Text:     "@" + card.Username,
			Photo:    h.mediaURL(image),
		}
	}
	return views
}

// mediaURL turns a stored relative path into its public URL.
func (h *handlerImpl) mediaURL(rel string) string {
	if rel == "" {
		return ""
	}
	return h.opts.MediaURL + rel
}
