package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	TopicCommentAdded = "COMMENT_ADDED"
	TopicNewMessage   = "NEW_MESSAGE"
)

// Event is what subscribers receive. Key is the filter value the event was
// published under (a post id for comments, a receiver id for messages).
type Event struct {
	Topic   string          `json:"topic"`
	Key     int64           `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Broker fans events out over Redis pub/sub, one channel per topic and key.
type Broker struct {
	rdb       *redis.Client
	logger    *logrus.Logger
	published func(topic string)
}

func NewBroker(rdb *redis.Client, logger *logrus.Logger) *Broker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Broker{rdb: rdb, logger: logger}
}

// OnPublish registers fn to be called after every successful publish.
func (b *Broker) OnPublish(fn func(topic string)) { b.published = fn }

func channel(topic string, key int64) string {
	return "events:" + topic + ":" + strconv.FormatInt(key, 10)
}

// Publish serialises payload and sends it to subscribers of topic and key.
func (b *Broker) Publish(ctx context.Context, topic string, key int64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(Event{Topic: topic, Key: key, Payload: raw})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, channel(topic, key), msg).Err(); err != nil {
		return err
	}
	if b.published != nil {
		b.published(topic)
	}
	return nil
}

// Subscribe streams events for topic and key until ctx is done. The returned
// channel is closed afterwards.
func (b *Broker) Subscribe(ctx context.Context, topic string, key int64) (<-chan Event, error) {
	sub := b.rdb.Subscribe(ctx, channel(topic, key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.logger.WithError(err).WithField("channel", m.Channel).Warn("drop malformed event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
