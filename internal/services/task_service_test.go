package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/notify"
)

var testNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type taskFixture struct {
	db       *fakeStorage
	notifier *recordingNotifier
	svc      *taskServiceImpl

	owner, collab, responsible, stranger models.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	db := newFakeStorage()
	n := &recordingNotifier{}
	svc := NewTaskService(zerolog.Nop(), db, n, metrics.New(), 5).(*taskServiceImpl)
	svc.now = func() time.Time { return testNow }

	return &taskFixture{
		db:          db,
		notifier:    n,
		svc:         svc,
		owner:       db.addUser("u-owner", "owner", "owner@x.com"),
		collab:      db.addUser("u-collab", "collab", "a@x.com"),
		responsible: db.addUser("u-resp", "resp", "r@x.com"),
		stranger:    db.addUser("u-stranger", "stranger", "s@x.com"),
	}
}

func (f *taskFixture) createTask(t *testing.T, in TaskInput) *models.Task {
	t.Helper()

	if in.Title == "" {
		in.Title = "Mission"
	}
	if in.TargetDate.IsZero() {
		in.TargetDate = date(2024, 6, 1)
	}
	task, err := f.svc.CreateTask(context.Background(), CreateTaskParams{ActorID: f.owner.ID, TaskInput: in})
	require.NoError(t, err)
	return task
}

func (f *taskFixture) stored(t *testing.T, id int64) *models.Task {
	t.Helper()

	task, err := f.db.GetTask(context.Background(), id)
	require.NoError(t, err)
	return task
}

func assertClosureInvariant(t *testing.T, task *models.Task) {
	t.Helper()

	if task.Status == models.StatusCompleted {
		assert.NotNil(t, task.ClosureDate, "completed task must have a closure date")
	} else {
		assert.Nil(t, task.ClosureDate, "status %s must not have a closure date", task.Status)
	}
}

func TestCreateTask_ClosureInvariant(t *testing.T) {
	for _, status := range models.TaskStatuses {
		t.Run(string(status), func(t *testing.T) {
			f := newTaskFixture(t)
			task := f.createTask(t, TaskInput{Status: status})

			stored := f.stored(t, task.ID)
			assertClosureInvariant(t, stored)
			if status == models.StatusCompleted {
				assert.Equal(t, date(2024, 5, 10), *stored.ClosureDate)
			}
		})
	}
}

func TestCreateTask_DefaultsToPending(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, TaskInput{})

	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, f.owner.ID, task.OwnerID)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), CreateTaskParams{
		ActorID:   f.owner.ID,
		TaskInput: TaskInput{Title: "   "},
	})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "target_date")
	assert.Zero(t, f.db.writeCount())
}

func TestCreateTask_RejectsUnknownStatus(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), CreateTaskParams{
		ActorID:   f.owner.ID,
		TaskInput: TaskInput{Title: "x", TargetDate: date(2024, 6, 1), Status: "archived"},
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateTask_NotifiesDeduplicatedAssignees(t *testing.T) {
	f := newTaskFixture(t)
	dup := f.db.addUser("u-dup", "dup", "a@x.com")
	second := f.db.addUser("u-b", "b", "b@x.com")
	silent := f.db.addUser("u-silent", "silent", "")

	f.createTask(t, TaskInput{
		CollaboratorIDs: []string{f.collab.ID, second.ID, dup.ID, silent.ID},
		ResponsibleID:   &f.responsible.ID,
	})

	msgs := f.notifier.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindTaskAssigned, msgs[0].Kind)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "r@x.com"}, msgs[0].To)
}

func TestCreateTask_ResponsibleSharingEmailIsNotRepeated(t *testing.T) {
	f := newTaskFixture(t)
	second := f.db.addUser("u-b", "b", "b@x.com")

	f.createTask(t, TaskInput{
		CollaboratorIDs: []string{f.collab.ID, second.ID},
		ResponsibleID:   &f.collab.ID,
	})

	msgs := f.notifier.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, msgs[0].To)
}

func TestCreateTask_NoRecipientsNoNotification(t *testing.T) {
	f := newTaskFixture(t)
	silent := f.db.addUser("u-silent", "silent", "")

	f.createTask(t, TaskInput{CollaboratorIDs: []string{silent.ID}})

	assert.Empty(t, f.notifier.sent())
}

func TestCreateTask_OwnerIsNeverCollaborator(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, TaskInput{CollaboratorIDs: []string{f.owner.ID, f.collab.ID, f.collab.ID}})

	stored := f.stored(t, task.ID)
	require.Len(t, stored.Collaborators, 1)
	assert.Equal(t, f.collab.ID, stored.Collaborators[0].ID)
}

func TestCreateTask_ProjectRules(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	project := &models.Project{OwnerID: f.collab.ID, Title: "P", Budget: decimal.NewFromInt(100)}
	require.NoError(t, f.db.CreateProject(ctx, project, []string{f.responsible.ID}))

	t.Run("actor outside project", func(t *testing.T) {
		_, err := f.svc.CreateTask(ctx, CreateTaskParams{
			ActorID:   f.owner.ID,
			TaskInput: TaskInput{Title: "x", TargetDate: date(2024, 6, 1), ProjectID: &project.ID},
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	require.NoError(t, f.db.UpdateProject(ctx, project, []string{f.responsible.ID, f.owner.ID}))

	t.Run("responsible outside project", func(t *testing.T) {
		_, err := f.svc.CreateTask(ctx, CreateTaskParams{
			ActorID: f.owner.ID,
			TaskInput: TaskInput{
				Title:         "x",
				TargetDate:    date(2024, 6, 1),
				ProjectID:     &project.ID,
				ResponsibleID: &f.stranger.ID,
			},
		})
		assert.ErrorIs(t, err, ErrInvalidResponsible)
	})

	t.Run("responsible is the project owner", func(t *testing.T) {
		task, err := f.svc.CreateTask(ctx, CreateTaskParams{
			ActorID: f.owner.ID,
			TaskInput: TaskInput{
				Title:         "x",
				TargetDate:    date(2024, 6, 1),
				ProjectID:     &project.ID,
				ResponsibleID: &f.collab.ID,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, project.ID, *task.ProjectID)
	})
}

func TestCreateTask_RejectsSuperuserResponsible(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	rootID := "u-root"
	f.db.users[rootID] = models.User{ID: rootID, Username: "root", Email: "root@x.com", IsSuperuser: true}
	writes := f.db.writeCount()

	_, err := f.svc.CreateTask(ctx, CreateTaskParams{
		ActorID:   f.owner.ID,
		TaskInput: TaskInput{Title: "x", TargetDate: date(2024, 6, 1), ResponsibleID: &rootID},
	})
	assert.ErrorIs(t, err, ErrInvalidResponsible)
	assert.Equal(t, writes, f.db.writeCount())
}

func TestCreateTask_RejectsForeignTags(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	foreign := &models.Tag{UserID: f.stranger.ID, Name: "theirs", Color: models.ColorDark}
	require.NoError(t, f.db.CreateTag(ctx, foreign))

	_, err := f.svc.CreateTask(ctx, CreateTaskParams{
		ActorID:   f.owner.ID,
		TaskInput: TaskInput{Title: "x", TargetDate: date(2024, 6, 1), TagIDs: []int64{foreign.ID}},
	})
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestUpdateTask_ClosureRule(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{Status: models.StatusCompleted})
	firstClosure := *f.stored(t, task.ID).ClosureDate

	update := func(status models.TaskStatus) *models.Task {
		f.svc.now = func() time.Time { return testNow.AddDate(0, 0, 3) }
		_, err := f.svc.UpdateTask(ctx, UpdateTaskParams{
			ActorID:   f.owner.ID,
			TaskID:    task.ID,
			TaskInput: TaskInput{Title: "Mission", TargetDate: date(2024, 6, 1), Status: status},
		})
		require.NoError(t, err)
		return f.stored(t, task.ID)
	}

	stored := update(models.StatusCompleted)
	assert.Equal(t, firstClosure, *stored.ClosureDate, "completed task keeps its closure date")

	stored = update(models.StatusInReview)
	assertClosureInvariant(t, stored)

	stored = update(models.StatusCompleted)
	assert.Equal(t, date(2024, 5, 13), *stored.ClosureDate)
}

func TestUpdateTask_OnlyOwner(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{
		Title:           "Original",
		CollaboratorIDs: []string{f.collab.ID},
		ResponsibleID:   &f.responsible.ID,
	})
	writes := f.db.writeCount()

	for _, actor := range []models.User{f.collab, f.responsible, f.stranger} {
		_, err := f.svc.UpdateTask(ctx, UpdateTaskParams{
			ActorID:   actor.ID,
			TaskID:    task.ID,
			TaskInput: TaskInput{Title: "Hijacked", TargetDate: date(2024, 7, 1)},
		})
		assert.ErrorIs(t, err, ErrNotOwner, actor.Username)
	}

	assert.Equal(t, writes, f.db.writeCount())
	assert.Equal(t, "Original", f.stored(t, task.ID).Title)
}

func TestDeleteTask_OnlyOwner(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{CollaboratorIDs: []string{f.collab.ID}})

	for _, actor := range []models.User{f.collab, f.stranger} {
		assert.ErrorIs(t, f.svc.DeleteTask(ctx, actor.ID, task.ID), ErrNotOwner)
	}
	f.stored(t, task.ID)

	require.NoError(t, f.svc.DeleteTask(ctx, f.owner.ID, task.ID))
	_, err := f.db.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSetTaskStatus(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{
		CollaboratorIDs: []string{f.collab.ID},
		ResponsibleID:   &f.responsible.ID,
	})

	t.Run("contributors may transition", func(t *testing.T) {
		for _, actor := range []models.User{f.owner, f.collab, f.responsible} {
			_, err := f.svc.SetTaskStatus(ctx, actor.ID, task.ID, models.StatusCompleted)
			require.NoError(t, err)
			assertClosureInvariant(t, f.stored(t, task.ID))

			_, err = f.svc.SetTaskStatus(ctx, actor.ID, task.ID, models.StatusInProgress)
			require.NoError(t, err)
			assertClosureInvariant(t, f.stored(t, task.ID))
		}
	})

	t.Run("stranger is denied without mutation", func(t *testing.T) {
		writes := f.db.writeCount()
		_, err := f.svc.SetTaskStatus(ctx, f.stranger.ID, task.ID, models.StatusCompleted)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, writes, f.db.writeCount())
		assert.Equal(t, models.StatusInProgress, f.stored(t, task.ID).Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := f.svc.SetTaskStatus(ctx, f.owner.ID, task.ID, "archived")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := f.svc.SetTaskStatus(ctx, f.owner.ID, 999, models.StatusPending)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestReportProgress_StatusChangeNotifiesOwner(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{CollaboratorIDs: []string{f.collab.ID}})
	before := len(f.notifier.sent())

	status := models.StatusCompleted
	entry, err := f.svc.ReportProgress(ctx, ReportProgressParams{
		ActorID: f.collab.ID,
		TaskID:  task.ID,
		Comment: "done",
		Amount:  decimal.NewFromInt(40),
		Status:  &status,
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)

	stored := f.stored(t, task.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assertClosureInvariant(t, stored)

	msgs := f.notifier.sent()[before:]
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindStatusChanged, msgs[0].Kind)
	assert.Equal(t, []string{"owner@x.com"}, msgs[0].To)
}

func TestReportProgress_SameStatusAppendsOnly(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{
		Status:          models.StatusInProgress,
		CollaboratorIDs: []string{f.collab.ID},
	})
	before := len(f.notifier.sent())
	updatedAt := f.stored(t, task.ID).UpdatedAt

	status := models.StatusInProgress
	f.svc.now = func() time.Time { return testNow.Add(time.Hour) }
	_, err := f.svc.ReportProgress(ctx, ReportProgressParams{
		ActorID: f.collab.ID,
		TaskID:  task.ID,
		Comment: "still working",
		Status:  &status,
	})
	require.NoError(t, err)

	stored := f.stored(t, task.ID)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Equal(t, updatedAt, stored.UpdatedAt)
	assert.Len(t, f.notifier.sent(), before)

	history, err := f.db.ListHistory(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Amount.IsZero())
}

func TestReportProgress_OwnerChangeDoesNotNotify(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, TaskInput{})
	before := len(f.notifier.sent())

	status := models.StatusInReview
	_, err := f.svc.ReportProgress(context.Background(), ReportProgressParams{
		ActorID: f.owner.ID,
		TaskID:  task.ID,
		Comment: "review please",
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Len(t, f.notifier.sent(), before)
}

func TestReportProgress_Denied(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	writes := f.db.writeCount()

	status := models.StatusCompleted
	_, err := f.svc.ReportProgress(ctx, ReportProgressParams{
		ActorID: f.stranger.ID,
		TaskID:  task.ID,
		Comment: "sneaky",
		Status:  &status,
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, writes, f.db.writeCount())
	assert.Equal(t, models.StatusPending, f.stored(t, task.ID).Status)
}

func TestReportProgress_Validation(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, TaskInput{})

	_, err := f.svc.ReportProgress(context.Background(), ReportProgressParams{
		ActorID: f.owner.ID,
		TaskID:  task.ID,
		Comment: "",
		Amount:  decimal.NewFromInt(-1),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "comment")
	assert.Contains(t, verr.Fields, "amount")
}

func TestListTasks_Visibility(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	collab := f.createTask(t, TaskInput{Title: "collab", CollaboratorIDs: []string{f.collab.ID}})
	resp := f.createTask(t, TaskInput{Title: "resp", ResponsibleID: &f.collab.ID})
	f.createTask(t, TaskInput{Title: "hidden"})

	page, err := f.svc.ListTasks(ctx, ListTasksParams{ActorID: f.collab.ID})
	require.NoError(t, err)

	ids := make([]int64, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []int64{collab.ID, resp.ID}, ids)
	assert.Equal(t, 2, page.Total)

	page, err = f.svc.ListTasks(ctx, ListTasksParams{ActorID: f.stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
}

func TestListTasks_SortOrder(t *testing.T) {
	f := newTaskFixture(t)

	a := f.createTask(t, TaskInput{Title: "A", Status: models.StatusPending, TargetDate: date(2024, 3, 1)})
	b := f.createTask(t, TaskInput{Title: "B", Status: models.StatusInProgress, TargetDate: date(2024, 2, 1)})
	c := f.createTask(t, TaskInput{Title: "C", Status: models.StatusCompleted, TargetDate: date(2024, 1, 1)})

	page, err := f.svc.ListTasks(context.Background(), ListTasksParams{ActorID: f.owner.ID})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 3)
	assert.Equal(t, []int64{b.ID, a.ID, c.ID}, []int64{page.Tasks[0].ID, page.Tasks[1].ID, page.Tasks[2].ID})
}

func TestListTasks_PageClamping(t *testing.T) {
	f := newTaskFixture(t)
	for i := 0; i < 7; i++ {
		f.createTask(t, TaskInput{TargetDate: date(2024, 6, 1+i)})
	}

	page, err := f.svc.ListTasks(context.Background(), ListTasksParams{ActorID: f.owner.ID, Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Tasks, 2)

	page, err = f.svc.ListTasks(context.Background(), ListTasksParams{ActorID: f.owner.ID, Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Tasks, 5)
}

func TestListTasks_Filters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	overdue := f.createTask(t, TaskInput{Title: "Report overdue", TargetDate: date(2024, 5, 1)})
	f.createTask(t, TaskInput{Title: "closed late", TargetDate: date(2024, 5, 1), Status: models.StatusCompleted})
	today := f.createTask(t, TaskInput{Title: "today", TargetDate: date(2024, 5, 10)})
	upcoming := f.createTask(t, TaskInput{Title: "REPORT upcoming", TargetDate: date(2024, 5, 20)})

	shared, err := f.svc.CreateTask(ctx, CreateTaskParams{
		ActorID: f.collab.ID,
		TaskInput: TaskInput{
			Title:           "shared",
			TargetDate:      date(2024, 5, 20),
			CollaboratorIDs: []string{f.owner.ID},
		},
	})
	require.NoError(t, err)

	ids := func(params ListTasksParams) []int64 {
		params.ActorID = f.owner.ID
		page, err := f.svc.ListTasks(ctx, params)
		require.NoError(t, err)
		out := make([]int64, 0, len(page.Tasks))
		for _, task := range page.Tasks {
			out = append(out, task.ID)
		}
		return out
	}

	assert.Equal(t, []int64{overdue.ID}, ids(ListTasksParams{When: WhenOverdue}))
	assert.Equal(t, []int64{today.ID}, ids(ListTasksParams{When: WhenToday}))
	assert.ElementsMatch(t, []int64{upcoming.ID, shared.ID}, ids(ListTasksParams{When: WhenUpcoming}))
	assert.Equal(t, []int64{shared.ID}, ids(ListTasksParams{Ownership: OwnershipShared}))
	assert.Equal(t, []int64{overdue.ID, upcoming.ID}, ids(ListTasksParams{Search: "report"}))
	assert.Equal(t, []int64{upcoming.ID}, ids(ListTasksParams{Search: "report", When: WhenUpcoming, Ownership: OwnershipMine}))
}

func TestGetTaskDetail(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{CollaboratorIDs: []string{f.collab.ID}})

	for _, comment := range []string{"first", "second"} {
		_, err := f.svc.ReportProgress(ctx, ReportProgressParams{ActorID: f.collab.ID, TaskID: task.ID, Comment: comment})
		require.NoError(t, err)
	}

	detail, err := f.svc.GetTaskDetail(ctx, f.collab.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, detail.CanEdit)
	require.Len(t, detail.History, 2)
	assert.Equal(t, "second", detail.History[0].Comment)

	detail, err = f.svc.GetTaskDetail(ctx, f.owner.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, detail.CanEdit)

	_, err = f.svc.GetTaskDetail(ctx, f.stranger.ID, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTaskFormOptions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	mine := &models.Tag{UserID: f.owner.ID, Name: "mine", Color: models.ColorPrimary}
	require.NoError(t, f.db.CreateTag(ctx, mine))
	require.NoError(t, f.db.CreateTag(ctx, &models.Tag{UserID: f.collab.ID, Name: "theirs"}))

	project := &models.Project{OwnerID: f.owner.ID, Title: "P"}
	require.NoError(t, f.db.CreateProject(ctx, project, []string{f.responsible.ID}))

	opts, err := f.svc.TaskFormOptions(ctx, f.owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, opts.Tags, 1)
	assert.Equal(t, mine.ID, opts.Tags[0].ID)
	for _, u := range opts.Collaborators {
		assert.NotEqual(t, f.owner.ID, u.ID)
	}

	opts, err = f.svc.TaskFormOptions(ctx, f.owner.ID, &project.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(opts.Responsibles))
	for _, u := range opts.Responsibles {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{f.owner.ID, f.responsible.ID}, ids)

	_, err = f.svc.TaskFormOptions(ctx, f.stranger.ID, &project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExportTasks_ReturnsEveryVisibleTask(t *testing.T) {
	f := newTaskFixture(t)
	for i := 0; i < 8; i++ {
		f.createTask(t, TaskInput{TargetDate: date(2024, 6, 1+i)})
	}

	tasks, err := f.svc.ExportTasks(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 8)

	tasks, err = f.svc.ExportTasks(context.Background(), f.stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
