// Package notify fans out moderation notifications. Delivery is best-effort:
// one blocked recipient never aborts the rest, and the state change that
// triggered the fan-out is already committed.
package notify

import (
	"context"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

// Sender is the narrow slice of the messaging transport the dispatcher needs.
type Sender interface {
	SendText(chatID int64, text string) error
}

type Dispatcher struct {
	sender Sender
	users  repository.UsersRepository
	logger repository.Logger
}

func NewDispatcher(sender Sender, users repository.UsersRepository, logger repository.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, users: users, logger: logger}
}

// Notify delivers text to every recipient, skipping failures, and returns the
// delivered count.
func (d *Dispatcher) Notify(ctx context.Context, tgIDs []int64, text string) int {
	delivered := 0
	for _, id := range tgIDs {
		if err := d.sender.SendText(id, text); err != nil {
			d.logger.Error(err, "notify", "user", id, 0)
			continue
		}
		delivered++
	}
	return delivered
}

// NotifySuperAdmins resolves recipients by role and delivers best-effort.
func (d *Dispatcher) NotifySuperAdmins(ctx context.Context, text string) int {
	admins, err := d.users.ListByRoles(ctx, models.RoleSuperAdmin)
	if err != nil {
		d.logger.Error(err, "notify_super_admins", "user", 0, 0)
		return 0
	}
	ids := make([]int64, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.TelegramID)
	}
	return d.Notify(ctx, ids, text)
}
