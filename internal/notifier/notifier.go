// Package notifier реализует постановку писем в очередь уведомлений.
// Само письмо отправляет отдельный процесс notification-sender,
// потребляющий очередь.
package notifier

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// EmailNotifier публикует письма в exchange уведомлений RabbitMQ.
type EmailNotifier struct {
	ch *amqp.Channel
}

// NewEmailNotifier создает новый экземпляр EmailNotifier.
func NewEmailNotifier(ch *amqp.Channel) *EmailNotifier {
	return &EmailNotifier{ch: ch}
}

// SendEmail ставит письмо в очередь доставки.
func (n *EmailNotifier) SendEmail(msg models.EmailMessage) error {
	const op = "notifier.SendEmail"
	if err := rabbitmq.PublishMessage(n.ch, rabbitmq.NotificationExchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
