package entity

import "time"

// ActivityLog is an append-only record of a user action. Entries are
// never mutated or deleted by the application; logging is best-effort
// and must not block the request that produced it.
type ActivityLog struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	IPAddress  string    `json:"ip_address"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
}
