package postgres

import (
	"strconv"
	"strings"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const taskSelect = `
SELECT t.id,
       t.owner_id,
       t.project_id,
       t.responsible_id,
       t.title,
       t.description,
       t.estimated_cost,
       t.target_date,
       t.closure_date,
       t.status,
       t.progress,
       t.observations,
       t.created_at,
       t.updated_at,
       o.username,
       o.email,
       r.username,
       r.email
FROM tasks t
         JOIN users o ON o.id = t.owner_id
         LEFT JOIN users r ON r.id = t.responsible_id
`

// taskOrder puts completed tasks last, then sorts by due date.
const taskOrder = `
ORDER BY (t.status = 'completed'), t.target_date, t.id
`

// visibleTask matches tasks the user given as $1 owns, collaborates on
// or is responsible for.
const visibleTask = `(t.owner_id = $1
    OR t.responsible_id = $1
    OR EXISTS (SELECT 1 FROM task_collaborators tc WHERE tc.task_id = t.id AND tc.user_id = $1))`

type queryArgs struct {
	args []any
}

func (q *queryArgs) add(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// taskFilterWhere renders the WHERE clause of f. The user id is
// always the first argument.
func taskFilterWhere(f services.TaskFilter) (string, []any) {
	q := &queryArgs{}
	q.add(f.UserID)

	var sb strings.Builder
	sb.WriteString("WHERE ")
	sb.WriteString(visibleTask)

	if f.Search != "" {
		sb.WriteString("\n  AND t.title ILIKE ")
		sb.WriteString(q.add("%" + likeEscaper.Replace(f.Search) + "%"))
	}
	if f.Status != nil {
		sb.WriteString("\n  AND t.status = ")
		sb.WriteString(q.add(string(*f.Status)))
	}

	switch f.When {
	case services.WhenOverdue:
		sb.WriteString("\n  AND t.target_date < ")
		sb.WriteString(q.add(f.Today))
		sb.WriteString("\n  AND t.status <> '")
		sb.WriteString(string(models.StatusCompleted))
		sb.WriteString("'")
	case services.WhenToday:
		sb.WriteString("\n  AND t.target_date = ")
		sb.WriteString(q.add(f.Today))
	case services.WhenUpcoming:
		sb.WriteString("\n  AND t.target_date > ")
		sb.WriteString(q.add(f.Today))
	}

	switch f.Ownership {
	case services.OwnershipMine:
		sb.WriteString("\n  AND t.owner_id = $1")
	case services.OwnershipShared:
		sb.WriteString("\n  AND t.owner_id <> $1")
	}

	sb.WriteString("\n")
	return sb.String(), q.args
}

func buildListTasksQuery(f services.TaskFilter) (string, []any) {
	where, args := taskFilterWhere(f)
	q := &queryArgs{args: args}

	var sb strings.Builder
	sb.WriteString(taskSelect)
	sb.WriteString(where)
	sb.WriteString(taskOrder)
	if f.Limit > 0 {
		sb.WriteString("LIMIT ")
		sb.WriteString(q.add(f.Limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(q.add(max(f.Offset, 0)))
		sb.WriteString("\n")
	}
	return sb.String(), q.args
}

func buildCountTasksQuery(f services.TaskFilter) (string, []any) {
	where, args := taskFilterWhere(f)
	return "SELECT count(*)\nFROM tasks t\n" + where, args
}
