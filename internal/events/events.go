package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
)

const (
	EvaluationCreated = "evaluation.created"

	DefaultQueue = "jobfit.evaluations"
)

type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Queue   string `mapstructure:"queue"`
}

// Message is the body published for every persisted evaluation.
type Message struct {
	Type           string         `json:"type"`
	EvaluationID   int64          `json:"evaluation_id"`
	RoleID         int64          `json:"role_id"`
	CandidateName  string         `json:"candidate_name"`
	CandidateEmail string         `json:"candidate_email,omitempty"`
	Total          int            `json:"total_score"`
	Scores         map[string]int `json:"scores"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewMessage builds the event body for evaluation.
func NewMessage(evaluation *interview.Evaluation) Message {
	return Message{
		Type:           EvaluationCreated,
		EvaluationID:   evaluation.ID,
		RoleID:         evaluation.RoleID,
		CandidateName:  evaluation.Candidate.Name,
		CandidateEmail: evaluation.Candidate.Email,
		Total:          evaluation.Total(),
		Scores:         evaluation.Judgement.ScoreMap(),
		CreatedAt:      evaluation.CreatedAt.UTC(),
	}
}

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends evaluation events to a durable RabbitMQ queue.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *zap.Logger
}

// New returns Nop when events are disabled, otherwise a connected Publisher.
func New(cfg Config, log *zap.Logger) (interview.Notifier, func() error, error) {
	if !cfg.Enabled {
		return Nop{}, func() error { return nil }, nil
	}

	p, err := Dial(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// Dial connects to the broker and declares the queue.
func Dial(cfg Config, log *zap.Logger) (*Publisher, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring queue %q: %w", queue, err)
	}

	p := newPublisher(ch, q.Name, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{channel: ch, queue: queue, logger: log}
}

func (p *Publisher) EvaluationCreated(ctx context.Context, evaluation *interview.Evaluation) error {
	body, err := json.Marshal(NewMessage(evaluation))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         EvaluationCreated,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", EvaluationCreated, err)
	}

	p.logger.Debug("evaluation event published", zap.String("queue", p.queue), zap.Int64("evaluation_id", evaluation.ID))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Nop drops every event.
type Nop struct{}

func (Nop) EvaluationCreated(context.Context, *interview.Evaluation) error { return nil }
