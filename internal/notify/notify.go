// Package notify announces scan progress on a message broker so other
// services can follow a batch without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillscan/internal/report"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const (
	EventResumeScanned = "resume.scanned"
	EventScanCompleted = "scan.completed"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	ScanID     uuid.UUID `json:"scan_id"`
	Type       string    `json:"type"`
	Path       string    `json:"path,omitempty"`
	Skills     []string  `json:"matched_skills,omitempty"`
	Matched    int       `json:"matched_count"`
	Predefined int       `json:"predefined_count"`
	Percentage string    `json:"percentage,omitempty"`
	Resumes    int       `json:"resumes,omitempty"`
	Failures   int       `json:"failures,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }
func (nop) Close() error { return nil }

// Nop discards every event.
func Nop() Publisher { return nop{} }

// Events builds one event per resume followed by a completion event.
func Events(r *scan.Report) []Event {
	now := time.Now().UTC()
	events := make([]Event, 0, r.Len()+1)
	for _, entry := range r.Entries {
		e := Event{
			ID:         uuid.New(),
			ScanID:     r.ID,
			Type:       EventResumeScanned,
			Path:       entry.Path,
			Skills:     entry.Skills,
			Matched:    entry.Matched(),
			Predefined: entry.Predefined,
			Percentage: report.FormatPercentage(entry.Percentage()),
			Timestamp:  now,
		}
		if entry.Err != nil {
			e.Error = entry.Err.Error()
		}
		events = append(events, e)
	}
	events = append(events, Event{
		ID:        uuid.New(),
		ScanID:    r.ID,
		Type:      EventScanCompleted,
		Resumes:   r.Len(),
		Failures:  r.Failures(),
		Timestamp: now,
	})
	return events
}

// PublishReport sends every event for r. Failures are logged, not
// returned: a broker outage must not fail a finished scan.
func PublishReport(ctx context.Context, p Publisher, r *scan.Report, logger zerolog.Logger) {
	for _, event := range Events(r) {
		if err := p.Publish(ctx, event); err != nil {
			logger.Error().Err(err).Str("scan_id", r.ID.String()).Str("type", event.Type).Msg("failed to publish update")
			return
		}
	}
}

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	exchange    string
	openChannel func() (channel, error)
	closeConn   func() error
}

// DialAMQP connects to the broker and declares the topic exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		exchange: exchange,
		openChannel: func() (channel, error) {
			return conn.Channel()
		},
		closeConn: conn.Close,
	}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, event Event) error {
	ch, err := p.openChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return ch.Publish(
		p.exchange,
		fmt.Sprintf("scan.%s", event.ScanID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Type:         event.Type,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if p.closeConn == nil {
		return nil
	}
	return p.closeConn()
}
