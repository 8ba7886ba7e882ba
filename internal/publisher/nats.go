package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// AnnouncementEvent is the JSON payload published for downstream consumers.
type AnnouncementEvent struct {
	Text        string `json:"text"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type NatsPublisher struct {
	conn    natsConn
	subject string
	now     func() time.Time
}

func NewNatsPublisher(natsURL, subject string) (*NatsPublisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("salesbot"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			zap.L().Warn("Disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zap.L().Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to NATS")
	}
	return newNatsPublisher(conn, subject), nil
}

func newNatsPublisher(conn natsConn, subject string) *NatsPublisher {
	return &NatsPublisher{conn: conn, subject: subject, now: time.Now}
}

func (p *NatsPublisher) Publish(ctx context.Context, announcement models.Announcement) error {
	data, err := json.Marshal(AnnouncementEvent{
		Text:        announcement.Text,
		ImageURL:    announcement.ImageURL,
		ImageBase64: announcement.ImageBase64(),
		Timestamp:   p.now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "encoding announcement")
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.Mark(errors.Wrapf(err, "nats publish to %s", p.subject), models.ErrPublish)
	}
	return nil
}

func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}
