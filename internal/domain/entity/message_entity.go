package entity

import "time"

// Message is a direct message. The sender owns it; the receiver may read it.
type Message struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`

	Sender   *User `json:"sender,omitempty"`
	Receiver *User `json:"receiver,omitempty"`
}

func (m *Message) GetID() int64     { return m.ID }
func (m *Message) TypeName() string { return TypeMessage }
func (m *Message) OwnerID() int64   { return m.SenderID }

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

func (m *Message) Clone() *Message {
	c := *m
	c.Sender, c.Receiver = nil, nil
	return &c
}

func (m *Message) SetID(id int64) { m.ID = id }

func (m *Message) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}
