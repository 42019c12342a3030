package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
	"gemcanvas/internal/platform/rabbitmq"
)

type JournalStore interface {
	Create(ctx context.Context, entry *model.JournalEntry) error
}

// JournalWorker drains the journal queue into the journal table.
type JournalWorker struct {
	conn      *amqp.Connection
	repo      JournalStore
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJournalWorker(conn *amqp.Connection, repo JournalStore, queueName string, log *logger.Logger) *JournalWorker {
	return &JournalWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log.With("component", "journal_worker"),
	}
}

func (w *JournalWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	w.log.Info("journal worker started", "queue", w.queueName)
	return nil
}

func (w *JournalWorker) handle(ctx context.Context, d amqp.Delivery) {
	if err := w.persist(ctx, d.Body); err != nil {
		w.log.Error("journal delivery dropped", "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *JournalWorker) persist(ctx context.Context, body []byte) error {
	var entry model.JournalEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return fmt.Errorf("decode journal entry failed: %w", err)
	}
	if entry.Kind == "" || entry.GemID == "" {
		return fmt.Errorf("journal entry missing kind or gem id")
	}
	entry.ID = 0
	return w.repo.Create(ctx, &entry)
}

func (w *JournalWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
