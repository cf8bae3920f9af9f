package service

import (
	"context"
	"encoding/json"
	"fmt"

	"notebot-be/internal/pkg/logger"
	"notebot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NotificationDelivery pushes a payload to every connected client of a
// user. The websocket hub implements it.
type NotificationDelivery interface {
	SendToUser(userId int64, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService turns note events into push notifications so a user's
// other connected devices see changes as they happen.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  NotificationDelivery
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery NotificationDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var evt events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	userId, ok := eventUserId(evt)
	if !ok {
		cs.logger.Warn("Consumer", "Event without user_id", map[string]interface{}{
			"type": evt.Type,
		})
		msg.Ack()
		return
	}

	notification, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": map[string]interface{}{
			"event":   evt.Type,
			"message": notificationText(evt.Type),
		},
	})
	if err != nil {
		msg.Ack()
		return
	}

	if cs.delivery != nil {
		cs.delivery.SendToUser(userId, notification)
	}
	cs.logger.Info("Consumer", "Delivered note event", map[string]interface{}{
		"type": evt.Type, "user_id": userId,
	})
	msg.Ack()
}

// eventUserId digs the user id out of the decoded payload. JSON numbers
// arrive as float64.
func eventUserId(evt events.BaseEvent) (int64, bool) {
	raw, ok := evt.Data["user_id"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func notificationText(eventType string) string {
	switch eventType {
	case events.NoteCreated:
		return "Добавлена новая заметка."
	case events.NoteUpdated:
		return "Заметка изменена."
	case events.NoteDeleted:
		return "Заметка удалена."
	default:
		return fmt.Sprintf("Событие: %s", eventType)
	}
}
