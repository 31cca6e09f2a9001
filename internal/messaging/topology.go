package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// DeclareTopology declares the direct exchange, the durable queue and the
// single binding between them. Declarations are declare-if-absent: both the
// publisher and the consumer call this on startup, whichever comes up first.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		events.TicketsExchange,
		amqp.ExchangeDirect,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		events.TicketsQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return ch.QueueBind(
		events.TicketsQueue,
		events.TicketCreatedKey,
		events.TicketsExchange,
		false,
		nil,
	)
}
