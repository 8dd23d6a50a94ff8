package entity

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`

	Author *User `json:"author,omitempty"`
	Post   *Post `json:"post,omitempty"`
}

func (c *Comment) GetID() int64     { return c.ID }
func (c *Comment) TypeName() string { return TypeComment }
func (c *Comment) OwnerID() int64   { return c.AuthorID }

func (c *Comment) Clone() *Comment {
	cp := *c
	cp.Author, cp.Post = nil, nil
	return &cp
}

func (c *Comment) SetID(id int64) { c.ID = id }

func (c *Comment) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}
