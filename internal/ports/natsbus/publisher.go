// Package natsbus mirrors table events onto NATS subjects.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"jacks/internal/app"
	"jacks/internal/ports"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Connect dials the NATS server at url with reconnect settings suited to a
// long-running game server.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Kind        app.EventKind `json:"kind"`
	ChannelID   string        `json:"channel_id"`
	Recipients  []string      `json:"recipients,omitempty"`
	Payload     any           `json:"payload"`
	PublishedAt time.Time     `json:"published_at"`
}

// Publisher implements ports.EventPublisher.
type Publisher struct {
	conn   Conn
	prefix string
	now    func() time.Time
}

// NewPublisher publishes to "<prefix>.<channel>.<kind>".
func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(prefix, "."), now: time.Now}
}

// Subject returns the subject an event for channelID is published on.
func (p *Publisher) Subject(channelID string, kind app.EventKind) string {
	return p.prefix + "." + sanitizeToken(channelID) + "." + string(kind)
}

// Publish encodes ev and sends it. NATS publishes are buffered, so ctx is
// only checked before sending.
func (p *Publisher) Publish(ctx context.Context, channelID string, ev app.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{
		Kind:        ev.Kind,
		ChannelID:   channelID,
		Recipients:  ev.Recipients,
		Payload:     ev.Payload,
		PublishedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", ev.Kind, err)
	}
	if err := p.conn.Publish(p.Subject(channelID, ev.Kind), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Kind, err)
	}
	return nil
}

// sanitizeToken keeps channel IDs from introducing extra subject tokens or wildcards.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}

var _ ports.EventPublisher = (*Publisher)(nil)
