package reconcile

import (
	"strings"

	"joinsync/internal/config"
	"joinsync/internal/models"
)

// Messages renders the notification sent for a decision.
type Messages struct {
	Approved string
	Rejected string
}

func MessagesFromConfig(m config.Messages) Messages {
	return Messages{Approved: m.Approved, Rejected: m.Rejected}
}

func (m Messages) Text(status models.Status, username string) string {
	tmpl := m.Rejected
	if status == models.StatusApproved {
		tmpl = m.Approved
	}
	return strings.ReplaceAll(tmpl, "{username}", username)
}
