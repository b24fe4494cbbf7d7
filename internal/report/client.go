package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Client publishes report payloads over NATS.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Intermediate implements Reporter.
func (c *Client) Intermediate(ctx context.Context, p Payload) error {
	p.Kind = "intermediate"
	return c.publish(SubjectIntermediate, p)
}

// Final implements Reporter.
func (c *Client) Final(ctx context.Context, p Payload) error {
	p.Kind = "final"
	return c.publish(SubjectFinal, p)
}

func (c *Client) publish(subject string, p Payload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	c.logger.Info("report published",
		"subject", subject,
		"session_id", p.SessionID,
		"kind", p.Kind,
		"turns", p.TurnCount)
	return nil
}

func (c *Client) Close() {
	c.conn.Close()
}
