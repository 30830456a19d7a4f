// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// SystemMessage is a platform notice delivered to a single user.
type SystemMessage struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipientId"`
	Title       string `json:"title,omitempty"`
	Content     string `json:"content"`
	DedupeKey   string `json:"dedupeKey,omitempty"`
	Read        bool   `json:"read"`
	CreatedAt   int64  `json:"createdAt"`
}

// SystemMessagesService fans platform notices out to users.
type SystemMessagesService struct {
	db   *DB
	coll collection[SystemMessage]
}

// Send delivers the notice to every recipient. When dedupeKey is set,
// recipients that already hold a notice with the same key are skipped;
// deleting the notice makes the recipient eligible again. Returns the
// number of notices actually delivered.
func (service *SystemMessagesService) Send(ctx context.Context, recipients []string, title, content, dedupeKey string) (delivered int, err error) {
	defer mon.Task()(&ctx)(&err)

	if content == "" {
		return 0, storage.ErrConstraint.New("system message needs content")
	}
	createdAt := now()
	err = service.coll.mutateAll(ctx, func(messages map[string]SystemMessage) error {
		for _, recipient := range recipients {
			if recipient == "" {
				continue
			}
			if dedupeKey != "" && hasMessageWithKey(messages, recipient, dedupeKey) {
				continue
			}
			message := SystemMessage{
				ID:          newID("sys"),
				RecipientID: recipient,
				Title:       title,
				Content:     content,
				DedupeKey:   dedupeKey,
				CreatedAt:   createdAt,
			}
			messages[message.ID] = message
			delivered++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}

func hasMessageWithKey(messages map[string]SystemMessage, recipient, dedupeKey string) bool {
	for _, message := range messages {
		if message.RecipientID == recipient && message.DedupeKey == dedupeKey {
			return true
		}
	}
	return false
}

// ListForUser returns the user's notices, newest first.
func (service *SystemMessagesService) ListForUser(userID string) ([]SystemMessage, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var messages []SystemMessage
	for _, message := range records {
		if message.RecipientID == userID {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt != messages[j].CreatedAt {
			return messages[i].CreatedAt > messages[j].CreatedAt
		}
		return messages[i].ID > messages[j].ID
	})
	return messages, nil
}

// UnreadCount returns how many of the user's notices are unread.
func (service *SystemMessagesService) UnreadCount(userID string) (int, error) {
	messages, err := service.coll.all()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, message := range messages {
		if message.RecipientID == userID && !message.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notice read. Only the recipient may do so.
func (service *SystemMessagesService) MarkRead(ctx context.Context, userID, messageID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, messageID, func(message *SystemMessage, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("system message %s", messageID)
		}
		if message.RecipientID != userID {
			return storage.ErrConstraint.New("message %s does not belong to %s", messageID, userID)
		}
		message.Read = true
		return nil
	})
}

// MarkAllRead marks every notice of the user read.
func (service *SystemMessagesService) MarkAllRead(ctx context.Context, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutateAll(ctx, func(messages map[string]SystemMessage) error {
		for id, message := range messages {
			if message.RecipientID == userID && !message.Read {
				message.Read = true
				messages[id] = message
			}
		}
		return nil
	})
}

// Delete removes one notice. Only the recipient may do so.
func (service *SystemMessagesService) Delete(ctx context.Context, userID, messageID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	message, ok, err := service.coll.get(messageID)
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrNotFound.New("system message %s", messageID)
	}
	if message.RecipientID != userID {
		return storage.ErrConstraint.New("message %s does not belong to %s", messageID, userID)
	}
	return service.coll.remove(ctx, messageID)
}

// ClearAll removes every notice of the user.
func (service *SystemMessagesService) ClearAll(ctx context.Context, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutateAll(ctx, func(messages map[string]SystemMessage) error {
		for id, message := range messages {
			if message.RecipientID == userID {
				delete(messages, id)
			}
		}
		return nil
	})
}
