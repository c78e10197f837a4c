package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"

	"social-hub/infrastructure/logger"
)

// IPublishEvents emits a message for every completed publish batch so
// downstream consumers (analytics, notification fan-out) can react.
type IPublishEvents interface {
	Publish(ctx context.Context, payload []byte) (string, error)
}

// NewPubSub creates the Google Pub/Sub client.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID)
}

type PublishEvents struct {
	client *pubsub.Client
	topic  string
}

func NewPublishEvents(client *pubsub.Client, topic string) IPublishEvents {
	return &PublishEvents{client: client, topic: topic}
}

func (p *PublishEvents) Publish(ctx context.Context, payload []byte) (string, error) {
	topic := p.client.Topic(p.topic)

	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topic).Info("Topic does not exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topic); err != nil {
			return "", err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return "", err
	}
	return serverID, nil
}
