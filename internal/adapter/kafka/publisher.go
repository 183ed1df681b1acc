// Package kafka publishes emergency alerts to a Kafka topic so responder
// tooling can subscribe without polling the store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// Alert is the wire envelope for one fan-out, whether an SOS post or a new
// flood report.
type Alert struct {
	ID       string    `json:"id"`
	PostID   string    `json:"postId"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Details  string    `json:"details,omitempty"`
	Level    string    `json:"level,omitempty"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Publisher produces SOS and flood-report alerts to the alert topic.
// It implements service.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSOS serializes the SOS post into an alert envelope and publishes it.
func (p *Publisher) PublishSOS(ctx context.Context, post domain.AidPost) error {
	alert := Alert{
		ID:       uuid.NewString(),
		PostID:   post.ID,
		Title:    post.Title,
		Location: post.Location,
		Details:  post.Details,
		IssuedAt: time.Now().UTC(),
	}
	return p.publish(ctx, alert, "sos")
}

// PublishFloodReport mirrors a newly filed flood report to the alert topic.
func (p *Publisher) PublishFloodReport(ctx context.Context, report domain.FloodReport) error {
	alert := Alert{
		ID:       uuid.NewString(),
		PostID:   report.ID,
		Title:    fmt.Sprintf("%s flood report", report.Level),
		Location: fmt.Sprintf("%.5f, %.5f", report.Location.Latitude, report.Location.Longitude),
		Level:    string(report.Level),
		IssuedAt: time.Now().UTC(),
	}
	alertType := "flood_report"
	if report.IsSOS {
		alertType = "sos"
	}
	return p.publish(ctx, alert, alertType)
}

func (p *Publisher) publish(ctx context.Context, alert Alert, alertType string) error {
	msg, err := serializeToMessage(alert, alertType)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Alert into a Kafka message.
func serializeToMessage(alert Alert, alertType string) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.PostID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alertType)},
			{Key: "issued_at", Value: []byte(alert.IssuedAt.Format(time.RFC3339))},
		},
	}, nil
}
