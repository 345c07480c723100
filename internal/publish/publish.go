// Package publish pushes filesystem snapshots to a NATS JetStream subject so
// external collectors can consume them without scraping the API.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"diskwatch/internal/conf"
	"diskwatch/internal/errors"
	"diskwatch/internal/fsstat"
	"diskwatch/internal/logging"
)

// SnapshotMessage is the wire payload published for every poll cycle.
type SnapshotMessage struct {
	AgentID     string                  `json:"agent_id"`
	Hostname    string                  `json:"hostname"`
	Timestamp   time.Time               `json:"timestamp"`
	Filesystems []fsstat.FilesystemInfo `json:"filesystems"`
}

// NATSPublisher publishes snapshot messages to one JetStream subject. The
// agent ID is generated per process so restarts are distinguishable.
type NATSPublisher struct {
	settings conf.NATSSettings
	agentID  string
	hostname string
	nc       *nats.Conn
	publish  func(subject string, data []byte) error
	now      func() time.Time
	log      *slog.Logger
}

// NewNATSPublisher connects to the configured NATS server and prepares a
// JetStream context. The returned publisher must be closed with Close.
func NewNATSPublisher(settings conf.NATSSettings) (*NATSPublisher, error) {
	nc, err := nats.Connect(settings.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, errors.Newf("connecting to NATS at %q: %w", settings.URL, err).
			Component("publish").
			Category(errors.CategoryNetwork).
			Context("url", settings.URL).
			Build()
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, errors.Newf("creating JetStream context: %w", err).
			Component("publish").
			Category(errors.CategoryNetwork).
			Build()
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	p := &NATSPublisher{
		settings: settings,
		agentID:  uuid.NewString(),
		hostname: hostname,
		nc:       nc,
		publish: func(subject string, data []byte) error {
			_, err := js.Publish(subject, data)
			return err
		},
		now: time.Now,
		log: logging.ForService("publish"),
	}

	p.log.Info("connected to NATS",
		"url", settings.URL,
		"subject", settings.Subject,
		"agent_id", p.agentID)
	return p, nil
}

// Publish implements the monitor's Publisher contract.
func (p *NATSPublisher) Publish(ctx context.Context, snapshots []fsstat.FilesystemInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(p.message(snapshots))
	if err != nil {
		return errors.Newf("marshaling snapshot message: %w", err).
			Component("publish").
			Category(errors.CategoryGeneric).
			Build()
	}

	if err := p.publish(p.settings.Subject, payload); err != nil {
		return errors.Newf("publishing to %q: %w", p.settings.Subject, err).
			Component("publish").
			Category(errors.CategoryNetwork).
			Context("subject", p.settings.Subject).
			Build()
	}

	p.log.Debug("published snapshots",
		"subject", p.settings.Subject,
		"filesystems", len(snapshots))
	return nil
}

func (p *NATSPublisher) message(snapshots []fsstat.FilesystemInfo) SnapshotMessage {
	return SnapshotMessage{
		AgentID:     p.agentID,
		Hostname:    p.hostname,
		Timestamp:   p.now(),
		Filesystems: snapshots,
	}
}

// Close drains the connection, flushing buffered messages.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.log.Error("draining NATS connection", "error", err)
		}
	}
}
