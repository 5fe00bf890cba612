package notification

import (
	"context"
	"encoding/json"
	"sync"

	"foodshare/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

type (
	// Publisher sends recipe events to the broker. Publishing is
	// best-effort: callers log failures and never fail the request.
	Publisher interface {
		PublishRecipePublished(ctx context.Context, event RecipePublishedEvent) error
	}

	amqpPublisher struct {
		mu      sync.Mutex
		conn    *amqp.Connection
		channel *amqp.Channel
	}
)

func NewPublisher() Publisher {
	return &amqpPublisher{}
}

func (p *amqpPublisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.conn.IsClosed() {
		return p.channel, nil
	}

	conn, err := amqp.Dial(utils.GetConfig("RABBITMQ_URL"))
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(RecipePublishedQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p.conn = conn
	p.channel = ch
	return ch, nil
}

func (p *amqpPublisher) PublishRecipePublished(ctx context.Context, event RecipePublishedEvent) error {
	ch, err := p.ensureChannel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", RecipePublishedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
