package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/igorlobovc/claimsift/pkg/logging"
)

// Redis channels for scoring-run events.
const (
	ChannelRunProgress  = "runs.scoring.progress"
	ChannelRunCompleted = "runs.scoring.completed"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a BaseEvent with sensible defaults.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "claimsift",
		Version:   "1.0",
	}
}

// RunCompletedEvent is published when a scoring run finishes.
type RunCompletedEvent struct {
	BaseEvent

	RunID     string `json:"run_id"`
	SourceTag string `json:"source_tag"`

	TotalFiles int `json:"total_files"`
	TotalRows  int `json:"total_rows"`

	GoldCount    int `json:"gold_count"`
	SilverCount  int `json:"silver_count"`
	BronzeCount  int `json:"bronze_count"`
	NoMatchCount int `json:"no_match_count"`
	Promoted     int `json:"promoted_count"`
	FailedFiles  int `json:"failed_files"`

	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds float64   `json:"duration_seconds"`

	Success bool `json:"success"`
}

// Publisher publishes scoring-run events to Redis. A nil client disables
// publishing, which keeps fully offline runs possible.
type Publisher struct {
	client *redis.Client
	logger logging.Logger
}

// PublisherConfig holds Redis connection configuration.
type PublisherConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *redis.Client, logger logging.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.With(logging.F("component", "event_publisher")),
	}
}

// NewPublisherFromConfig creates a publisher with a new Redis connection.
func NewPublisherFromConfig(cfg PublisherConfig, logger logging.Logger) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPublisher(client, logger), nil
}

// PublishRunCompleted publishes a completion event for a scoring run.
func (p *Publisher) PublishRunCompleted(ctx context.Context, event RunCompletedEvent) error {
	event.BaseEvent = NewBaseEvent("scoring.run_completed")
	event.DurationSeconds = event.CompletedAt.Sub(event.StartedAt).Seconds()
	return p.publish(ctx, ChannelRunCompleted, event)
}

func (p *Publisher) publish(ctx context.Context, channel string, event interface{}) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	p.logger.Debug("Published event",
		logging.F("channel", channel),
		logging.F("bytes", len(payload)),
	)
	return nil
}
