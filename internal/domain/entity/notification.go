package entity

import "time"

// NotificationType is the severity tag rendered by the client.
// Handling must be exhaustive over these four values.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// IsValid returns true if the type is one of the four known severities.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification is a message delivered to employees by polling.
// TargetUserID == nil means broadcast: visible to every employee.
// There is no persisted read state; "new" is a client-side heuristic.
type Notification struct {
	ID           int64            `json:"id"`
	TargetUserID *int64           `json:"target_user_id,omitempty"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	CreatedAt    time.Time        `json:"created_at"`
}

// IsBroadcast reports whether the notification targets all employees.
func (n *Notification) IsBroadcast() bool {
	return n.TargetUserID == nil
}
