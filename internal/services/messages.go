package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/auth"
	"redweb-backend/internal/models"
)

// searchLimit caps the number of users SearchUsers returns.
const searchLimit = 10

type MessageService struct {
	c   *collections
	log *zap.Logger
	now func() time.Time
}

type SendInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type ConversationMessages struct {
	OtherUser models.UserSummary `json:"otherUser"`
	Messages  []models.Message   `json:"messages"`
}

// Conversations derives one entry per counterpart from the flat message log,
// most recent thread first.
func (s *MessageService) Conversations(ctx context.Context, caller auth.Identity) ([]models.Conversation, error) {
	messages, err := s.c.messages.Load(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.Conversation)
	for i := range messages {
		m := &messages[i]
		if !m.Involves(caller.UserID) {
			continue
		}
		other := m.Counterpart(caller.UserID)
		key := models.ConversationKey(caller.UserID, other)
		conv, ok := byKey[key]
		if !ok {
			conv = &models.Conversation{ConversationID: key, OtherUser: models.UserSummary{ID: other}}
			if j := models.FindUser(users, other); j >= 0 {
				conv.OtherUser = users[j].ToSummary()
			}
			byKey[key] = conv
		}
		if !ok || m.Timestamp.After(conv.LastMessage.Timestamp) {
			conv.LastMessage = models.MessageBrief{Content: m.Content, Timestamp: m.Timestamp, SenderID: m.SenderID}
		}
		if m.ReceiverID == caller.UserID && !m.Read {
			conv.UnreadCount++
		}
	}

	out := make([]models.Conversation, 0, len(byKey))
	for _, conv := range byKey {
		out = append(out, *conv)
	}
	slices.SortFunc(out, func(a, b models.Conversation) int {
		if c := b.LastMessage.Timestamp.Compare(a.LastMessage.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ConversationID, b.ConversationID)
	})
	return out, nil
}

// Conversation returns every message exchanged with otherID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, caller auth.Identity, otherID string) (ConversationMessages, error) {
	messages, err := s.c.messages.Load(ctx)
	if err != nil {
		return ConversationMessages{}, err
	}
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return ConversationMessages{}, err
	}

	res := ConversationMessages{OtherUser: models.UserSummary{ID: otherID}, Messages: []models.Message{}}
	if i := models.FindUser(users, otherID); i >= 0 {
		res.OtherUser = users[i].ToSummary()
	}
	for i := range messages {
		if messages[i].Between(caller.UserID, otherID) {
			res.Messages = append(res.Messages, messages[i])
		}
	}
	slices.SortStableFunc(res.Messages, func(a, b models.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return res, nil
}

func (s *MessageService) Send(ctx context.Context, caller auth.Identity, in SendInput) (models.Message, error) {
	receiverID := strings.TrimSpace(in.ReceiverID)
	content := cleanText(in.Content)
	if receiverID == "" || content == "" {
		return models.Message{}, apperr.Validation("Receiver ID and content are required")
	}
	if receiverID == caller.UserID {
		return models.Message{}, apperr.Validation("You cannot send a message to yourself")
	}

	users, err := s.c.users.Load(ctx)
	if err != nil {
		return models.Message{}, err
	}
	if models.FindUser(users, receiverID) < 0 {
		return models.Message{}, apperr.NotFound("Receiver not found")
	}

	msg := models.Message{
		ID:         uuid.New().String(),
		SenderID:   caller.UserID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now(),
	}
	err = s.c.messages.Update(ctx, func(all []models.Message) ([]models.Message, error) {
		return append(all, msg), nil
	})
	if err != nil {
		return models.Message{}, err
	}
	s.log.Debug("💬 message sent", zap.String("sender_id", caller.UserID), zap.String("receiver_id", receiverID))
	return msg, nil
}

// MarkRead marks every message from otherID to the caller as read. Nothing is
// written when there was nothing unread.
func (s *MessageService) MarkRead(ctx context.Context, caller auth.Identity, otherID string) (int, error) {
	changed := 0
	err := s.c.messages.Update(ctx, func(all []models.Message) ([]models.Message, error) {
		for i := range all {
			m := &all[i]
			if m.SenderID == otherID && m.ReceiverID == caller.UserID && !m.Read {
				m.Read = true
				changed++
			}
		}
		if changed == 0 {
			return nil, errNothingChanged
		}
		return all, nil
	})
	if isNothingChanged(err) {
		err = nil
	}
	return changed, err
}

// SearchUsers matches query against other users' names and emails. Queries
// shorter than two characters return nothing.
func (s *MessageService) SearchUsers(ctx context.Context, caller auth.Identity, query string) ([]models.UserSummary, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.UserSummary, 0)
	if len([]rune(term)) < 2 {
		return out, nil
	}
	users, err := s.c.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == caller.UserID || !users[i].MatchesSearch(term) {
			continue
		}
		out = append(out, users[i].ToSummary())
		if len(out) == searchLimit {
			break
		}
	}
	return out, nil
}
