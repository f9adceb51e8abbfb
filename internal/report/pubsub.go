package report

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// PubSubAPI is the subset of the Pub/Sub client used by PubSubSink.
type PubSubAPI interface {
	Publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

// pubsubTopicWrapper adapts a *pubsub.Topic to PubSubAPI.
type pubsubTopicWrapper struct {
	topic *pubsub.Topic
}

func (w *pubsubTopicWrapper) Publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	result := w.topic.Publish(ctx, msg)
	return result.Get(ctx)
}

// PubSubSink publishes reports to a Pub/Sub topic. PUBSUB_EMULATOR_HOST is
// honoured by the client library. owned is the client the sink created
// itself and must close.
type PubSubSink struct {
	client PubSubAPI
	owned  *pubsub.Client
	topic  *pubsub.Topic
}

// PubSubSinkOption configures a PubSubSink.
type PubSubSinkOption func(*PubSubSink)

// WithPubSubClient sets a custom Pub/Sub client (useful for testing).
func WithPubSubClient(c PubSubAPI) PubSubSinkOption {
	return func(s *PubSubSink) { s.client = c }
}

// NewPubSubSink creates a new Pub/Sub report sink.
func NewPubSubSink(projectID, topicID string, opts ...PubSubSinkOption) (*PubSubSink, error) {
	if topicID == "" {
		return nil, fmt.Errorf("Pub/Sub topic ID required")
	}
	s := &PubSubSink{}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		if projectID == "" {
			return nil, fmt.Errorf("Pub/Sub project ID required")
		}
		client, err := pubsub.NewClient(context.Background(), projectID)
		if err != nil {
			return nil, fmt.Errorf("creating Pub/Sub client: %w", err)
		}
		s.owned = client
		s.topic = client.Topic(topicID)
		s.client = &pubsubTopicWrapper{topic: s.topic}
	}
	return s, nil
}

// Name returns the sink identifier.
func (s *PubSubSink) Name() string { return "pubsub" }

// Send publishes the report as JSON to the configured Pub/Sub topic.
func (s *PubSubSink) Send(ctx context.Context, r types.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	_, err = s.client.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"outcome":    string(r.Outcome),
			"runId":      r.RunID,
			"sightingId": r.SightingID,
		},
	})
	if err != nil {
		return fmt.Errorf("publishing to Pub/Sub: %w", err)
	}

	return nil
}

// Close flushes the topic's publisher and closes a client created by
// NewPubSubSink. A client passed with WithPubSubClient is left open.
func (s *PubSubSink) Close() error {
	if s.topic != nil {
		s.topic.Stop()
		s.topic = nil
	}
	if s.owned == nil {
		return nil
	}
	err := s.owned.Close()
	s.owned = nil
	return err
}
