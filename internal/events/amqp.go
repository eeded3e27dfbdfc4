// Package events announces ledger changes over AMQP so that other running
// sessions can refresh.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is used when events.exchange is unset.
const DefaultExchange = "kroner.changes"

const publishTimeout = 5 * time.Second

// Client holds one AMQP connection and channel bound to a topic exchange.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string) (*Client, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{conn: conn, channel: channel, exchange: exchange}

	err = c.channel.ExchangeDeclare(
		c.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return c, nil
}

// DialRetry calls Dial until the broker answers, following opts.
func DialRetry(ctx context.Context, url, exchange string, opts common.RetryOptions) (*Client, error) {
	var c *Client
	err := common.WithRetry(ctx, func() error {
		var err error
		c, err = Dial(url, exchange)
		return err
	}, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Publish sends event with its kind as routing key.
func (c *Client) Publish(ctx context.Context, event model.ChangeEvent) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchange,         // exchange
		string(event.Kind), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   event.At,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "published change event",
		"kind", event.Kind,
		"id", event.ID,
		"exchange", c.exchange)
	return nil
}

// Consume binds a private queue to every change and calls handler for
// events that belong to owner, plus unowned category events. It returns when ctx ends or the broker
// closes the channel.
func (c *Client) Consume(ctx context.Context, owner string, handler func(model.ChangeEvent)) error {
	q, err := c.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, "#", c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "listening for change events", "exchange", c.exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			dispatch(ctx, delivery.Body, owner, handler)
		}
	}
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// dispatch decodes body and hands it to handler when it belongs to owner or
// to nobody. It reports whether the handler ran.
func dispatch(ctx context.Context, body []byte, owner string, handler func(model.ChangeEvent)) bool {
	event, err := Decode(body)
	if err != nil {
		slog.WarnContext(ctx, "dropping malformed change event", "error", err)
		return false
	}
	if event.Owner != "" && event.Owner != owner {
		return false
	}
	handler(event)
	return true
}

// Encode renders event as JSON.
func Encode(event model.ChangeEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal change event: %w", err)
	}
	return body, nil
}

// Decode parses a change event. Events without a kind are rejected.
func Decode(body []byte) (model.ChangeEvent, error) {
	var event model.ChangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("unmarshal change event: %w", err)
	}
	if event.Kind == "" {
		return model.ChangeEvent{}, errors.New("change event has no kind")
	}
	return event, nil
}
