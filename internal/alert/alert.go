// Package alert notifies configured destinations about failed script
// executions. Destinations are independent: a slow or broken destination
// never delays the others or the execution engine.
package alert

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// sendTimeout bounds a single destination delivery.
const sendTimeout = 30 * time.Second

// Attachment is a named blob included with an alert, typically the redacted
// output log of the failed execution.
type Attachment struct {
	Name    string
	Content []byte
}

// Alert is one notification.
type Alert struct {
	Title       string
	Message     string
	Attachments []Attachment
}

// Destination delivers alerts somewhere.
type Destination interface {
	// Name identifies the destination in logs.
	Name() string

	// Send delivers one alert. It must respect ctx cancellation.
	Send(ctx context.Context, a Alert) error
}

// Dispatcher fans alerts out to every configured destination concurrently.
type Dispatcher struct {
	destinations []Destination
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// NewDispatcher creates a Dispatcher for the given destinations.
func NewDispatcher(destinations []Destination, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{destinations: destinations, logger: logger}
}

// Dispatch sends the alert to every destination, each on its own goroutine.
// It returns immediately; delivery failures are logged per destination and
// do not affect the others.
func (d *Dispatcher) Dispatch(a Alert) {
	for _, dest := range d.destinations {
		d.wg.Add(1)
		go func(dest Destination) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			if err := dest.Send(ctx, a); err != nil {
				d.logger.Error("alert delivery failed",
					"destination", dest.Name(), "title", a.Title, "error", err)
			}
		}(dest)
	}
}

// Wait blocks until every in-flight delivery completed. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
