package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		Name:          "prode",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes envelopes on core NATS subjects.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
	clock  clockwork.Clock
}

func NewNATSPublisher(cfg NATSConfig, logger *slog.Logger, clock clockwork.Clock) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Error("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", slog.Any("error", err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, logger: logger, clock: clock}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, eventType string, tournamentID int, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := newEnvelope(p.clock, eventType, tournamentID, payload)
	if err != nil {
		return err
	}

	subject := Subject(eventType)
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type":    []string{eventType},
			"Tournament-ID": []string{strconv.Itoa(tournamentID)},
		},
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	p.logger.DebugContext(ctx, "published event", slog.String("subject", subject), slog.Int("tournament_id", tournamentID))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	if err != nil {
		p.nc.Close()
	}
	return err
}
