package models

import "time"

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// ConversationKey identifies the thread between two users regardless of who
// sent a given message.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// Involves reports whether userID is the sender or receiver of m.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Counterpart returns the other participant from userID's point of view.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Between reports whether m was exchanged between a and b in either direction.
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Conversation is the derived per-thread summary returned to clients.
type Conversation struct {
	ConversationID string       `json:"conversationId"`
	OtherUser      UserSummary  `json:"otherUser"`
	LastMessage    MessageBrief `json:"lastMessage"`
	UnreadCount    int          `json:"unreadCount"`
}

type MessageBrief struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}
