package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Reviews attendance and leave, manages employees and settings
	RoleEmployee Role = "employee" // Checks in/out and files leave requests
)

type User struct {
	ID                  string     `json:"id"`
	EmployeeCode        string     `json:"employeeCode"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	IsActive            *bool      `json:"isActive,omitempty"`
	DefaultCheckInTime  string     `json:"defaultCheckInTime,omitempty"`
	DefaultCheckOutTime string     `json:"defaultCheckOutTime,omitempty"`
	CustomCheckInTime   string     `json:"customCheckInTime,omitempty"`
	CustomCheckOutTime  string     `json:"customCheckOutTime,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id".
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(u)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// IsAdmin checks if user reviews other employees' records
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Ref is a reference to a user that the backend either populated with the
// full document or left as a bare id. It is resolved once when decoded.
type Ref struct {
	id   string
	user *User
}

// Reference builds an unpopulated reference.
func Reference(id string) Ref {
	return Ref{id: id}
}

// Populated builds a reference carrying the full user.
func Populated(u User) Ref {
	return Ref{id: u.ID, user: &u}
}

func (r Ref) ID() string {
	return r.id
}

// User returns the populated user, if the backend sent one.
func (r Ref) User() (User, bool) {
	if r.user == nil {
		return User{}, false
	}
	return *r.user, true
}

func (r Ref) IsPopulated() bool {
	return r.user != nil
}

func (r Ref) IsZero() bool {
	return r.id == "" && r.user == nil
}

// Name returns the user's name when populated, the id otherwise.
func (r Ref) Name() string {
	if r.user != nil && r.user.Name != "" {
		return r.user.Name
	}
	return r.id
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.user != nil {
		return json.Marshal(r.user)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = Ref{}
		return nil
	case b[0] == '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Reference(id)
		return nil
	case b[0] == '{':
		var u User
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		*r = Populated(u)
		return nil
	default:
		return errors.New("user reference must be an id string or a user object")
	}
}

// Names returns the display names of the populated references only.
func Names(refs []Ref) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u, ok := ref.User(); ok {
			names = append(names, u.Name)
		}
	}
	return names
}

// IDs returns the id of every reference.
func IDs(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID() != "" {
			ids = append(ids, ref.ID())
		}
	}
	return ids
}
