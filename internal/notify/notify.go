// Package notify delivers user-facing notifications. The desktop backend
// uses the platform notification service; the log backend is for headless
// runs and tests.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier delivers one notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop sends platform desktop notifications.
type Desktop struct {
	// AppIcon is an optional icon path passed to the platform service.
	AppIcon string
}

func (d *Desktop) Notify(title, body string) error {
	if err := beeep.Notify(title, body, d.AppIcon); err != nil {
		return fmt.Errorf("notify: desktop: %w", err)
	}
	return nil
}

// Logger writes notifications to the structured log instead of the desktop.
type Logger struct {
	Log *slog.Logger
}

func (l *Logger) Notify(title, body string) error {
	l.Log.Info("notification", slog.String("title", title), slog.String("body", body))
	return nil
}

// Recorder captures notifications for tests.
type Recorder struct {
	Sent []Message
}

type Message struct {
	Title string
	Body  string
}

func (r *Recorder) Notify(title, body string) error {
	r.Sent = append(r.Sent, Message{Title: title, Body: body})
	return nil
}
