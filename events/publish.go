// Package events publishes build results to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "addonsmith.build"

// BuildEvent reports the outcome of building one behavior file.
type BuildEvent struct {
	Path       string         `json:"path"`
	Identifier string         `json:"identifier,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Expanded   map[string]int `json:"expanded,omitempty"`
	Time       time.Time      `json:"time"`
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends build events. A Publisher without a connection drops
// events silently.
type Publisher struct {
	conn   Conn
	prefix string
}

// NewPublisher creates a publisher. conn may be nil.
func NewPublisher(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Connect dials a NATS server for publishing.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("addonsmith"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool {
	return p != nil && p.conn != nil
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(ev BuildEvent) string {
	if ev.Success {
		return p.prefix + ".success"
	}
	return p.prefix + ".failure"
}

// Publish sends ev on <prefix>.success or <prefix>.failure.
func (p *Publisher) Publish(ev BuildEvent) error {
	if !p.Enabled() {
		return nil
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(ev), data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	return nil
}
