package entity

import "time"

// Notification is addressed to a single user, who owns it.
type Notification struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
}

func (n *Notification) GetID() int64     { return n.ID }
func (n *Notification) TypeName() string { return TypeNotification }
func (n *Notification) OwnerID() int64   { return n.UserID }

func (n *Notification) Clone() *Notification {
	c := *n
	c.User = nil
	return &c
}

func (n *Notification) SetID(id int64) { n.ID = id }

func (n *Notification) Touch(now time.Time) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
}
