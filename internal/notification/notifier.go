// Package notification delivers signal-run alerts to external channels
// (Telegram, webhooks). Formatting lives here too, so every channel
// renders the same summary.
package notification

import (
	"context"
	"log"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Name identifies the channel for logs and metrics.
	Name() string

	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier logs alerts instead of delivering them (development, and
// the --no-alerts path).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Broadcast sends an alert through every notifier, continuing past
// failures. Returns the per-channel delivery status.
func Broadcast(ctx context.Context, notifiers []Notifier, alert Alert) map[string]error {
	status := make(map[string]error, len(notifiers))
	for _, n := range notifiers {
		err := n.Send(ctx, alert)
		status[n.Name()] = err
		if err != nil {
			log.Printf("[notify] %s delivery failed: %v", n.Name(), err)
		}
	}
	return status
}
