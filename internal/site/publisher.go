package site

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/margay/margay/internal/errs"
)

// Event subjects emitted during a build.
const (
	SubjectBuildStarted   = "margay.build.started"
	SubjectDocRendered    = "margay.build.doc.rendered"
	SubjectBuildCompleted = "margay.build.completed"
)

// BuildEvent is the payload published for each build lifecycle step.
type BuildEvent struct {
	BuildID   string    `json:"build_id"`
	Timestamp time.Time `json:"timestamp"`

	// Doc is set on doc.rendered events.
	Doc    string `json:"doc,omitempty"`
	Cached bool   `json:"cached,omitempty"`

	// Completion summary, set on build.completed.
	Rendered int    `json:"rendered,omitempty"`
	Failed   int    `json:"failed,omitempty"`
	Elapsed  string `json:"elapsed,omitempty"`
}

// Publisher emits build events. A nil *Publisher is a valid no-op, so
// callers never branch on whether eventing is configured.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url.
func Connect(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("margay-build"))
	if err != nil {
		return nil, errs.WrapRetryable(err, errs.CategoryIO, "connect to NATS")
	}
	return &Publisher{conn: conn}, nil
}

// Publish sends one event; failures are logged, never fatal to a build.
func (p *Publisher) Publish(subject string, ev BuildEvent) {
	if p == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("marshal build event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		slog.Warn("publish build event", "subject", subject, "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	_ = p.conn.Drain()
}
