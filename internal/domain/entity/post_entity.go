package entity

import "time"

type Post struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author   *User      `json:"author,omitempty"`
	Comments []*Comment `json:"comments,omitempty"`
	Likes    []*Like    `json:"likes,omitempty"`
}

func (p *Post) GetID() int64     { return p.ID }
func (p *Post) TypeName() string { return TypePost }
func (p *Post) OwnerID() int64   { return p.AuthorID }

func (p *Post) Clone() *Post {
	c := *p
	c.Author, c.Comments, c.Likes = nil, nil, nil
	return &c
}

func (p *Post) SetID(id int64) { p.ID = id }

func (p *Post) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
