package notify

import (
	"context"
	"strings"
)

type Kind string

const (
	KindTaskAssigned  Kind = "task_assigned"
	KindStatusChanged Kind = "status_changed"
)

// Message is a plain text email to one or more recipients.
type Message struct {
	Kind    Kind
	To      []string
	Subject string
	Body    string
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recipients returns the given addresses without blanks and
// duplicates, keeping the first occurrence order.
func Recipients(emails ...string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out
}
