package services

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/notify"
)

type fakeStorage struct {
	mu sync.RWMutex

	nextID int64

	users         map[string]models.User
	profiles      map[string]models.Profile
	sessions      map[string]models.Session
	tags          map[int64]models.Tag
	projects      map[int64]models.Project
	team          map[int64][]string
	tasks         map[int64]models.Task
	collaborators map[int64][]string
	taskTags      map[int64][]int64
	history       []models.HistoryEntry

	writes int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		nextID:        1,
		users:         make(map[string]models.User),
		profiles:      make(map[string]models.Profile),
		sessions:      make(map[string]models.Session),
		tags:          make(map[int64]models.Tag),
		projects:      make(map[int64]models.Project),
		team:          make(map[int64][]string),
		tasks:         make(map[int64]models.Task),
		collaborators: make(map[int64][]string),
		taskTags:      make(map[int64][]int64),
	}
}

func (db *fakeStorage) id() int64 {
	id := db.nextID
	db.nextID++
	return id
}

func (db *fakeStorage) addUser(id, username, email string) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := models.User{ID: id, Username: username, Email: email}
	db.users[id] = u
	db.profiles[id] = models.Profile{UserID: id, Image: models.DefaultProfileImage}
	return u
}

func (db *fakeStorage) writeCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.writes
}

// users

func (db *fakeStorage) CreateUser(_ context.Context, user *models.User, profile *models.Profile, session *models.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}
	db.users[user.ID] = *user
	db.profiles[user.ID] = *profile
	db.sessions[session.ID] = *session
	db.writes++
	return nil
}

func (db *fakeStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (db *fakeStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (db *fakeStorage) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := db.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (db *fakeStorage) ListUsers(_ context.Context, excludeID string) ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.User, 0, len(db.users))
	for _, u := range db.users {
		if u.ID != excludeID && !u.IsSuperuser {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (db *fakeStorage) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (db *fakeStorage) UpdateProfile(_ context.Context, user *models.User, profile *models.Profile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users[user.ID] = *user
	db.profiles[user.ID] = *profile
	db.writes++
	return nil
}

// sessions

func (db *fakeStorage) ReplaceSessions(_ context.Context, session *models.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, s := range db.sessions {
		if s.UserID == session.UserID {
			delete(db.sessions, id)
		}
	}
	db.sessions[session.ID] = *session
	return nil
}

func (db *fakeStorage) GetSessionByID(_ context.Context, id string) (*models.Session, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, ok := db.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (db *fakeStorage) GetSessionByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, s := range db.sessions {
		if s.RefreshToken == refreshToken && s.Fingerprint == fingerprint {
			return &s, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (db *fakeStorage) UpdateSession(_ context.Context, session *models.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	db.sessions[session.ID] = *session
	return nil
}

func (db *fakeStorage) DeleteSessionsByUserID(_ context.Context, userID string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for id, s := range db.sessions {
		if s.UserID == userID {
			delete(db.sessions, id)
			n++
		}
	}
	return n, nil
}

// tags

func (db *fakeStorage) CreateTag(_ context.Context, tag *models.Tag) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tag.ID = db.id()
	db.tags[tag.ID] = *tag
	return nil
}

func (db *fakeStorage) ListTagsByUser(_ context.Context, userID string) ([]models.Tag, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Tag, 0)
	for _, t := range db.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (db *fakeStorage) GetTagsByIDs(_ context.Context, ids []int64) ([]models.Tag, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := db.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// projects

func (db *fakeStorage) CreateProject(_ context.Context, project *models.Project, teamIDs []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	project.ID = db.id()
	db.projects[project.ID] = *project
	db.team[project.ID] = slices.Clone(teamIDs)
	db.writes++
	return nil
}

func (db *fakeStorage) GetProject(_ context.Context, id int64) (*models.Project, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	p, ok := db.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	db.loadProject(&p)
	return &p, nil
}

func (db *fakeStorage) loadProject(p *models.Project) {
	if owner, ok := db.users[p.OwnerID]; ok {
		p.Owner = &owner
	}
	p.Team = nil
	for _, id := range db.team[p.ID] {
		if u, ok := db.users[id]; ok {
			p.Team = append(p.Team, u)
		}
	}
}

func (db *fakeStorage) UpdateProject(_ context.Context, project *models.Project, teamIDs []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.projects[project.ID]; !ok {
		return ErrProjectNotFound
	}
	stored := *project
	stored.Owner, stored.Team = nil, nil
	db.projects[project.ID] = stored
	db.team[project.ID] = slices.Clone(teamIDs)
	db.writes++
	return nil
}

func (db *fakeStorage) DeleteProject(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(db.projects, id)
	delete(db.team, id)
	for tid, t := range db.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			t.ProjectID = nil
			db.tasks[tid] = t
		}
	}
	db.writes++
	return nil
}

func (db *fakeStorage) ListProjectsForUser(_ context.Context, userID string) ([]models.Project, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Project, 0)
	for _, p := range db.projects {
		if p.OwnerID == userID || slices.Contains(db.team[p.ID], userID) {
			db.loadProject(&p)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (db *fakeStorage) ProjectFigures(_ context.Context, projectIDs []int64) (map[int64]ProjectFigures, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[int64]ProjectFigures, len(projectIDs))
	for _, pid := range projectIDs {
		f := ProjectFigures{Spent: decimal.Zero}
		for _, t := range db.tasks {
			if t.ProjectID == nil || *t.ProjectID != pid {
				continue
			}
			f.TaskCount++
			if t.Status == models.StatusCompleted {
				f.CompletedCount++
			}
			for _, h := range db.history {
				if h.TaskID == t.ID {
					f.Spent = f.Spent.Add(h.Amount)
				}
			}
		}
		out[pid] = f
	}
	return out, nil
}

func (db *fakeStorage) ListProjectTasks(_ context.Context, projectID int64) ([]models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range db.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			db.loadTask(&t)
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

// tasks

func (db *fakeStorage) CreateTask(_ context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	task.ID = db.id()
	db.tasks[task.ID] = *task
	db.collaborators[task.ID] = slices.Clone(collaboratorIDs)
	db.taskTags[task.ID] = slices.Clone(tagIDs)
	db.writes++
	return nil
}

func (db *fakeStorage) GetTask(_ context.Context, id int64) (*models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	db.loadTask(&t)
	return &t, nil
}

func (db *fakeStorage) loadTask(t *models.Task) {
	if owner, ok := db.users[t.OwnerID]; ok {
		t.Owner = &owner
	}
	t.Responsible = nil
	if t.ResponsibleID != nil {
		if u, ok := db.users[*t.ResponsibleID]; ok {
			t.Responsible = &u
		}
	}
	t.Collaborators = nil
	for _, id := range db.collaborators[t.ID] {
		if u, ok := db.users[id]; ok {
			t.Collaborators = append(t.Collaborators, u)
		}
	}
	t.Tags = nil
	for _, id := range db.taskTags[t.ID] {
		if tag, ok := db.tags[id]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
}

func stripTask(t models.Task) models.Task {
	t.Owner, t.Responsible, t.Collaborators, t.Tags = nil, nil, nil, nil
	return t
}

func (db *fakeStorage) UpdateTask(_ context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	db.tasks[task.ID] = stripTask(*task)
	db.collaborators[task.ID] = slices.Clone(collaboratorIDs)
	db.taskTags[task.ID] = slices.Clone(tagIDs)
	db.writes++
	return nil
}

func (db *fakeStorage) UpdateTaskStatus(_ context.Context, task *models.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.tasks[task.ID]
	if !ok {
		return ErrTaskNotFound
	}
	stored.Status = task.Status
	stored.ClosureDate = task.ClosureDate
	stored.UpdatedAt = task.UpdatedAt
	db.tasks[task.ID] = stored
	db.writes++
	return nil
}

func (db *fakeStorage) DeleteTask(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(db.tasks, id)
	delete(db.collaborators, id)
	delete(db.taskTags, id)
	db.history = slices.DeleteFunc(db.history, func(h models.HistoryEntry) bool { return h.TaskID == id })
	db.writes++
	return nil
}

func (db *fakeStorage) visible(t models.Task, userID string) bool {
	return t.OwnerID == userID ||
		(t.ResponsibleID != nil && *t.ResponsibleID == userID) ||
		slices.Contains(db.collaborators[t.ID], userID)
}

func sortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		ac, bc := a.Status == models.StatusCompleted, b.Status == models.StatusCompleted
		if ac != bc {
			return !ac
		}
		if !a.TargetDate.Equal(b.TargetDate) {
			return a.TargetDate.Before(b.TargetDate)
		}
		return a.ID < b.ID
	})
}

func (db *fakeStorage) ListTasks(_ context.Context, filter TaskFilter) ([]models.Task, int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	matched := make([]models.Task, 0)
	for _, t := range db.tasks {
		if !db.visible(t, filter.UserID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		switch filter.When {
		case WhenOverdue:
			if !t.TargetDate.Before(filter.Today) || t.Status == models.StatusCompleted {
				continue
			}
		case WhenToday:
			if !t.TargetDate.Equal(filter.Today) {
				continue
			}
		case WhenUpcoming:
			if !t.TargetDate.After(filter.Today) {
				continue
			}
		}
		switch filter.Ownership {
		case OwnershipMine:
			if t.OwnerID != filter.UserID {
				continue
			}
		case OwnershipShared:
			if t.OwnerID == filter.UserID {
				continue
			}
		}
		db.loadTask(&t)
		matched = append(matched, t)
	}
	sortTasks(matched)

	total := len(matched)
	if filter.Limit == 0 {
		return matched, total, nil
	}
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (db *fakeStorage) AppendHistory(_ context.Context, entry *models.HistoryEntry, task *models.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry.ID = db.id()
	db.history = append(db.history, *entry)
	if task != nil {
		stored := db.tasks[task.ID]
		stored.Status = task.Status
		stored.ClosureDate = task.ClosureDate
		stored.UpdatedAt = task.UpdatedAt
		db.tasks[task.ID] = stored
	}
	db.writes++
	return nil
}

func (db *fakeStorage) ListHistory(_ context.Context, taskID int64) ([]models.HistoryEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.HistoryEntry, 0)
	for i := len(db.history) - 1; i >= 0; i-- {
		if db.history[i].TaskID == taskID {
			out = append(out, db.history[i])
		}
	}
	return out, nil
}

// reports

func (db *fakeStorage) CountTasksByStatus(_ context.Context, userID string) (map[models.TaskStatus]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[models.TaskStatus]int)
	for _, t := range db.tasks {
		if db.visible(t, userID) {
			out[t.Status]++
		}
	}
	return out, nil
}

func (db *fakeStorage) TopTags(_ context.Context, userID string, limit int) ([]models.TagUsage, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	counts := make(map[int64]int)
	for _, t := range db.tasks {
		if !db.visible(t, userID) {
			continue
		}
		for _, id := range db.taskTags[t.ID] {
			counts[id]++
		}
	}
	out := make([]models.TagUsage, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.TagUsage{Tag: db.tags[id], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag.Name < out[j].Tag.Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (db *fakeStorage) UpcomingTasks(_ context.Context, userID string, from, to time.Time, limit int) ([]models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range db.tasks {
		if !db.visible(t, userID) || t.Status == models.StatusCompleted {
			continue
		}
		if t.TargetDate.Before(from) || t.TargetDate.After(to) {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (db *fakeStorage) RecentHistory(_ context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.HistoryEntry, 0)
	for i := len(db.history) - 1; i >= 0 && len(out) < limit; i-- {
		h := db.history[i]
		if t, ok := db.tasks[h.TaskID]; ok && db.visible(t, userID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (db *fakeStorage) ProjectTotals(_ context.Context, ownerID string) (ProjectTotals, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	totals := ProjectTotals{Budget: decimal.Zero, Spent: decimal.Zero}
	for _, p := range db.projects {
		if p.OwnerID != ownerID {
			continue
		}
		totals.Budget = totals.Budget.Add(p.Budget)
		for _, t := range db.tasks {
			if t.ProjectID == nil || *t.ProjectID != p.ID {
				continue
			}
			for _, h := range db.history {
				if h.TaskID == t.ID {
					totals.Spent = totals.Spent.Add(h.Amount)
				}
			}
		}
	}
	return totals, nil
}

func (db *fakeStorage) SearchUsers(_ context.Context, search UserSearch) ([]UserCard, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var members []string
	if search.ProjectID != nil {
		p, ok := db.projects[*search.ProjectID]
		if !ok {
			return []UserCard{}, nil
		}
		members = append([]string{p.OwnerID}, db.team[p.ID]...)
	}

	q := strings.ToLower(search.Query)
	out := make([]UserCard, 0)
	for _, u := range db.users {
		if u.IsSuperuser {
			continue
		}
		if members != nil && !slices.Contains(members, u.ID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		out = append(out, UserCard{ID: u.ID, Username: u.Username, Email: u.Email, Image: db.profiles[u.ID].Image})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > search.Limit {
		out = out[:search.Limit]
	}
	return out, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}
