package entity

import (
	"time"
)

// User is the aggregate root of the social graph.
// Password holds a bcrypt hash and is never serialised.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Posts     []*Post `json:"posts,omitempty"`
	Followers []*User `json:"followers,omitempty"`
	Following []*User `json:"following,omitempty"`
}

func (u *User) GetID() int64     { return u.ID }
func (u *User) TypeName() string { return TypeUser }

// OwnerID of a user is the user itself.
func (u *User) OwnerID() int64 { return u.ID }

// Clone returns a copy without loaded relations.
func (u *User) Clone() *User {
	c := *u
	c.Posts, c.Followers, c.Following = nil, nil, nil
	return &c
}

func (u *User) SetID(id int64) { u.ID = id }

// Touch stamps creation and update times.
func (u *User) Touch(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
