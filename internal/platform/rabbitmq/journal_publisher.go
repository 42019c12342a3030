package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"gemcanvas/internal/model"
)

// JournalPublisher sends gem lifecycle events to the journal queue.
type JournalPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewJournalPublisher(conn *amqp.Connection, queueName string) *JournalPublisher {
	return &JournalPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *JournalPublisher) Publish(ctx context.Context, entry model.JournalEntry) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         entry.Kind,
			Timestamp:    entry.OccurredAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish journal entry failed: %w", err)
	}
	return nil
}
