package feed

import (
	"github.com/Skotchmaster/storefront/internal/models"
)

// AddNotification assigns an id and prepends n to the log, evicting the
// oldest entries past MaxNotifications. Ids are unix millis and strictly
// increasing.
func (f *Feed) AddNotification(n models.Notification) models.Notification {
	f.logMu.Lock()
	id := f.now().UnixMilli()
	if id <= f.lastID {
		id = f.lastID + 1
	}
	f.lastID = id
	n.ID = id

	entries := make([]models.Notification, 0, MaxNotifications)
	entries = append(entries, n)
	entries = append(entries, f.notifications...)
	if len(entries) > MaxNotifications {
		entries = entries[:MaxNotifications]
	}
	f.notifications = entries
	f.publish(f.notificationsLocked())
	return n
}

func (f *Feed) RemoveNotification(id int64) {
	f.logMu.Lock()
	idx := -1
	for i, n := range f.notifications {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		f.logMu.Unlock()
		return
	}
	f.notifications = append(f.notifications[:idx:idx], f.notifications[idx+1:]...)
	f.publish(f.notificationsLocked())
}

func (f *Feed) ClearNotifications() {
	f.logMu.Lock()
	f.notifications = nil
	f.publish([]models.Notification{})
}

// Notifications returns the log, most recent first.
func (f *Feed) Notifications() []models.Notification {
	f.logMu.Lock()
	defer f.logMu.Unlock()
	return f.notificationsLocked()
}

// SubscribeNotifications registers fn for the log after each change.
// Deliveries are serialized, so fn must not add, remove or clear
// notifications itself.
func (f *Feed) SubscribeNotifications(fn func([]models.Notification)) func() {
	return f.listeners.Subscribe(fn)
}

func (f *Feed) notificationsLocked() []models.Notification {
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// publish must be called with logMu held. It releases logMu and delivers
// snapshot in mutation order.
func (f *Feed) publish(snapshot []models.Notification) {
	ticket := f.listeners.Ticket()
	f.logMu.Unlock()
	f.listeners.Deliver(ticket, snapshot)
}
