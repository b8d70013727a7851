package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/triade-beauty/intake/internal/services"
)

// PubSubSubmissionPublisher publishes submission events to a Pub/Sub topic so
// follow-up automation (confirmation mail, CRM mirroring) runs off the
// request path.
type PubSubSubmissionPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubSubmissionPublisher constructs a Pub/Sub backed submission publisher.
func NewPubSubSubmissionPublisher(topic *pubsub.Topic) (*PubSubSubmissionPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub submission publisher: topic is required")
	}
	return &PubSubSubmissionPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishSubmissionEvent enqueues a submission event on the configured topic.
func (p *PubSubSubmissionPublisher) PublishSubmissionEvent(ctx context.Context, message services.SubmissionEventMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub submission publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal submission event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "itemId", message.ItemID)
	setAttr(attrs, "boardId", message.BoardID)
	setAttr(attrs, "formType", message.FormType)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish submission event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
