// Package push publishes channel snapshots to NATS JetStream.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AndiBellstedt/WinEventLogCustomization/internal/collectors"
	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

const DefaultSubject = "welc.channels"

// Publisher is the part of nats.JetStreamContext the pusher needs.
type Publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Payload is the JSON document published on each tick.
type Payload struct {
	SystemName string               `json:"system_name"`
	Collected  time.Time            `json:"collected"`
	Channels   []welc.ChannelConfig `json:"channels"`
	Snapshot   welc.EventLogChannel `json:"snapshot"`
}

// SnapshotFunc reads the current state of the host.
type SnapshotFunc func(ctx context.Context) (welc.EventLogChannel, error)

// Pusher periodically publishes snapshots.
type Pusher struct {
	js         Publisher
	subject    string
	systemName string
	interval   time.Duration
	snapshot   SnapshotFunc
	now        func() time.Time
}

// NewPusher returns a pusher publishing to subject every interval. An empty
// subject means DefaultSubject.
func NewPusher(js Publisher, subject, systemName string, interval time.Duration, snapshot SnapshotFunc) (*Pusher, error) {
	if js == nil {
		return nil, errors.New("jetstream publisher is nil")
	}
	if snapshot == nil {
		return nil, errors.New("snapshot function is nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("invalid push interval %v", interval)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Pusher{
		js:         js,
		subject:    subject,
		systemName: systemName,
		interval:   interval,
		snapshot:   snapshot,
		now:        time.Now,
	}, nil
}

func (p *Pusher) Subject() string { return p.subject }

// PushOnce takes one snapshot and publishes it.
func (p *Pusher) PushOnce(ctx context.Context) error {
	snap, err := p.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect snapshot: %w", err)
	}

	payload := Payload{
		SystemName: p.systemName,
		Collected:  p.now().UTC(),
		Channels:   collectors.ConfigsFromChannel(snap),
		Snapshot:   snap,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if _, err := p.js.Publish(p.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}
	log.Printf("Published %d channels to subject %s", len(payload.Channels), p.subject)
	return nil
}

// Run publishes on every tick until ctx is done. Failed ticks are logged and
// retried on the next one.
func (p *Pusher) Run(ctx context.Context) error {
	log.Printf("Starting push to NATS JetStream at subject=%s every=%v", p.subject, p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PushOnce(ctx); err != nil {
				log.Printf("Push failed: %v", err)
			}
		}
	}
}

// Connect dials NATS and returns its JetStream context. close drains the
// connection.
func Connect(url string) (js nats.JetStreamContext, close func(), err error) {
	nc, err := nats.Connect(url, nats.Name("welc"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err = nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	return js, func() {
		if err := nc.Drain(); err != nil {
			log.Printf("Failed to drain NATS connection: %v", err)
		}
	}, nil
}
