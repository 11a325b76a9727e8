package notification

import (
	"encoding/json"
	"time"
)

// Type is the admin notification kind emitted by the backend.
type Type string

const (
	TypeCheckIn  Type = "check-in"
	TypeCheckOut Type = "check-out"
	TypeAlert    Type = "alert"
)

type Metadata struct {
	AttendanceID string `json:"attendanceId,omitempty"`
	IPAddress    string `json:"ipAddress,omitempty"`
	DeviceInfo   string `json:"deviceInfo,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// Notification is an entry of the admin notification feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Notification) UnmarshalJSON(b []byte) error {
	type alias Notification
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = aux.MongoID
	}
	return nil
}

// Feed is a page of notifications plus the unread counter.
type Feed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
