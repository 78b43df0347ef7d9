package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Publisher pushes cart domain events to a Pub/Sub topic. Publication is
// fire-and-forget: delivery failures are logged, never surfaced to the
// mutation that triggered the event.
type Publisher struct {
	client    *pubsub.Client
	topic     *pubsub.Publisher
	projectID string
	logg      *logger.Logger
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewPublisher creates a Pub/Sub v2 publisher for the configured cart topic.
func NewPublisher(ctx context.Context, cfg config.EventingConfig, logg *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.CartEventTopic) == "" {
		return nil, errors.New("cart event topic is required")
	}

	psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	p := &Publisher{
		client:    psClient,
		projectID: cfg.ProjectID,
		logg:      logg,
	}
	fullName := p.topicResourceName(cfg.CartEventTopic)
	if err := p.ensureTopicExists(ctx, fullName); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	p.topic = psClient.Publisher(fullName)

	if logg != nil {
		logg.Info(ctx, "pubsub publisher initialized")
	}
	return p, nil
}

// Publish serializes the event as JSON and hands it to Pub/Sub. The result is
// not awaited; a background goroutine logs delivery errors.
func (p *Publisher) Publish(ctx context.Context, eventType string, event any) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub publisher not initialized")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", eventType, err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": eventType},
	})

	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil && p.logg != nil {
			p.logg.Error(ctx, fmt.Sprintf("publishing %s event", eventType), err)
		}
	}()
	return nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	if p.topic != nil {
		p.topic.Stop()
	}
	return p.client.Close()
}

func (p *Publisher) ensureTopicExists(ctx context.Context, fullName string) error {
	_, err := p.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: fullName})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", fullName)
		}
		return fmt.Errorf("checking topic %q: %w", fullName, err)
	}
	return nil
}

func (p *Publisher) topicResourceName(name string) string {
	n := strings.TrimSpace(name)
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	return fmt.Sprintf("projects/%s/topics/%s", p.projectID, n)
}
