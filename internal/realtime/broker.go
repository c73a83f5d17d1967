package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/observability"
)

const subscriptionBufferSize = 32

// Topic builders for the event streams the API exposes. A topic scopes an
// event type to a single entity, so subscribers only see what they asked for.
func CommentAddedTopic(sessionID string) string { return "COMMENT_ADDED_" + sessionID }

func ChatMessageAddedTopic(sessionID string) string { return "CHAT_MESSAGE_ADDED_" + sessionID }

func GroupChatMessageAddedTopic(groupID string) string {
	return "GROUP_CHAT_MESSAGE_ADDED_" + groupID
}

func NotificationTopic(userID string) string { return "NOTIFICATION_" + userID }

// Message is what subscribers receive. Payload is the JSON encoding of
// whatever was published, so messages survive the cross-replica bridge
// unchanged.
type Message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

type brokerEvent struct {
	Source  string  `json:"source"`
	Message Message `json:"message"`
}

// Subscription is a single subscriber's handle on a topic. Receive from C;
// call Close exactly once when done. A subscriber that stops draining C has
// messages dropped rather than blocking publishers.
type Subscription struct {
	C <-chan Message

	broker *Broker
	topic  string
	ch     chan Message
	once   sync.Once
}

// Close detaches the subscription from its topic and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.unsubscribe(s)
		close(s.ch)
	})
}

// Broker is an in-process topic pub/sub with an optional redis and NATS
// bridge so events reach subscribers on other replicas. Each replica tags
// outgoing events with its node ID and ignores its own events coming back.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	closed bool

	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

// NewBroker creates a broker. redisClient and natsConn may be nil; the broker
// then only delivers within this process. channelBase scopes the bridge
// channels, matching the config's event channel base.
func NewBroker(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *Broker {
	redisChannel := ""
	natsSubject := ""
	if channelBase != "" {
		redisChannel = channelBase + ":events"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Broker{
		topics:       make(map[string]map[*Subscription]struct{}),
		redis:        redisClient,
		redisChannel: redisChannel,
		nats:         natsConn,
		natsSubject:  natsSubject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "realtime_broker").Logger(),
	}
}

// Start launches the bridge consumers. It returns immediately; consumers run
// until ctx is cancelled.
func (b *Broker) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

// Subscribe registers a new subscriber on topic. The returned subscription
// must be closed by the caller to release it.
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{topic: topic, broker: b, ch: make(chan Message, subscriptionBufferSize)}
	sub.C = sub.ch

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*Subscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	observability.RealtimeSubscriptionsActive().Inc()
	return sub
}

func (b *Broker) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	observability.RealtimeSubscriptionsActive().Dec()
}

// Publish delivers payload to local subscribers of topic and forwards it to
// other replicas through the bridge. Marshal errors are reported; bridge
// errors are logged and do not fail the publish, local delivery has already
// happened.
func (b *Broker) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	message := Message{Topic: topic, Payload: raw, SentAt: time.Now().UTC()}
	b.deliver(message)
	observability.RealtimeEventsPublished().WithLabelValues(eventLabel(topic)).Inc()

	if err := b.forward(ctx, message); err != nil {
		b.logger.Warn().Err(err).Str("topic", topic).Msg("failed to forward event to bridge")
	}
	return nil
}

func (b *Broker) deliver(message Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[message.Topic] {
		select {
		case sub.ch <- message:
		default:
			observability.RealtimeEventsDropped().Inc()
			b.logger.Warn().Str("topic", message.Topic).Msg("dropping event for slow subscriber")
		}
	}
}

func (b *Broker) forward(ctx context.Context, message Message) error {
	if (b.redis == nil || b.redisChannel == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(brokerEvent{Source: b.nodeID, Message: message})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (b *Broker) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		b.handleBridgeEvent([]byte(msg.Payload))
	}
}

func (b *Broker) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handleBridgeEvent(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats event subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain nats event subscription")
		}
	}()
}

func (b *Broker) handleBridgeEvent(data []byte) {
	var event brokerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid bridge event")
		return
	}
	if event.Source == b.nodeID {
		return
	}
	b.deliver(event.Message)
}

// eventLabel strips the entity ID suffix so metrics stay low-cardinality.
func eventLabel(topic string) string {
	if idx := strings.LastIndex(topic, "_"); idx > 0 {
		if _, err := uuid.Parse(topic[idx+1:]); err == nil {
			return topic[:idx]
		}
	}
	return topic
}
