package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"foodshare/internal/utils"
	"foodshare/internal/utils/mailing"
	"foodshare/pkg/user"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SendMailFunc matches mailing.SendMail and exists so tests can
// capture outgoing mail.
type SendMailFunc func(toEmail, subject, body string) error

type Consumer struct {
	userRepository user.UserRepository
	sendMail       SendMailFunc
}

func NewConsumer(userRepository user.UserRepository) *Consumer {
	return &Consumer{
		userRepository: userRepository,
		sendMail:       mailing.SendMail,
	}
}

// Start connects to RabbitMQ, declares the recipe.published queue and
// consumes events, emailing each follower of the recipe's author. It
// runs a reconnect loop with backoff; the broker being down never
// affects the HTTP path.
func (c *Consumer) Start() {
	url := utils.GetConfig("RABBITMQ_URL")
	if url == "" {
		log.Println("recipe-consumer: RABBITMQ_URL not set, notifications disabled")
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("recipe-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			log.Printf("recipe-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(RecipePublishedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(RecipePublishedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for delivery := range deliveries {
		if err := c.handle(delivery.Body); err != nil {
			log.Printf("recipe-consumer: %v", err)
			delivery.Nack(false, false)
			continue
		}
		delivery.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var event RecipePublishedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	emails, err := c.userRepository.GetFollowerEmails(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("load followers for author %s: %w", event.AuthorID, err)
	}

	subject := fmt.Sprintf("%s published a new recipe", event.AuthorName)
	mailBody := fmt.Sprintf(
		"<p>%s just published <b>%s</b>.</p><p>Open the app to see it.</p>",
		event.AuthorName, event.RecipeName,
	)

	for _, email := range emails {
		if err := c.sendMail(email, subject, mailBody); err != nil {
			log.Printf("recipe-consumer: mail to %s failed: %v", email, err)
		}
	}
	return nil
}
