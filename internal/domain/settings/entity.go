package settings

// Settings are the company-wide attendance rules managed by admins.
type Settings struct {
	DefaultCheckInTime  string   `json:"defaultCheckInTime,omitempty"`
	DefaultCheckOutTime string   `json:"defaultCheckOutTime,omitempty"`
	AllowedIPs          []string `json:"allowedIPs"`
}
