package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/notify"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

// StartDeliveryConsumer connects to RabbitMQ, declares the
// booking.confirmed queue (durable), and delivers tickets for every
// confirmation it receives: the booking graph is loaded fresh from the
// database and handed to the dispatcher.  The function runs a
// reconnect loop with exponential backoff and keeps running across
// broker restarts; a message whose delivery fails is rejected without
// requeue so a broken booking cannot poison the queue, and the
// customer can re-trigger delivery through the email endpoint.
func StartDeliveryConsumer(tickets *repository.TicketRepo, dispatcher *notify.Dispatcher) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("delivery-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, tickets, dispatcher); err != nil {
			log.Printf("delivery-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, tickets *repository.TicketRepo, dispatcher *notify.Dispatcher) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("delivery-consumer: set QoS failed: %v", err)
	}

	if _, err = ch.QueueDeclare(confirmedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(confirmedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, tickets, dispatcher); err != nil {
			log.Printf("delivery-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, tickets *repository.TicketRepo, dispatcher *notify.Dispatcher) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	view, err := tickets.BookingForDelivery(ctx, ev.BookingID, ev.CustomerID)
	if err != nil {
		return fmt.Errorf("load booking %d: %w", ev.BookingID, err)
	}
	return dispatcher.Deliver(view)
}
