package entity

import "time"

type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
	Post *Post `json:"post,omitempty"`
}

func (l *Like) GetID() int64     { return l.ID }
func (l *Like) TypeName() string { return TypeLike }
func (l *Like) OwnerID() int64   { return l.UserID }

func (l *Like) Clone() *Like {
	c := *l
	c.User, c.Post = nil, nil
	return &c
}

func (l *Like) SetID(id int64) { l.ID = id }

func (l *Like) Touch(now time.Time) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
}
