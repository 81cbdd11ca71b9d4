package events

import (
	"context"
	"fmt"
	"time"

	"geozone-backend/internal/domain"
	"geozone-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher emits zone lifecycle events as JSON on
// <prefix>.created, <prefix>.updated and <prefix>.deleted.
type NATSPublisher struct {
	conn   publisher
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url and keeps reconnecting in the background.
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("geozone-backend"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	p := newPublisher(nc, subjectPrefix)
	p.nc = nc
	return p, nil
}

func newPublisher(conn publisher, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: subjectPrefix}
}

func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) PublishZoneEvent(ctx context.Context, event domain.ZoneEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal zone event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", p.Subject(event.Type), err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when NATS_URL is empty.
func NewNoopPublisher() domain.ZoneEventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishZoneEvent(ctx context.Context, event domain.ZoneEvent) error {
	logger.WithContext(ctx).Debug().
		Str("type", event.Type).
		Int64("zone_id", event.ZoneID).
		Msg("Zone event dropped, NATS disabled")
	return nil
}
