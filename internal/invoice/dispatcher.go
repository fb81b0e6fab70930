package invoice

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// defaultDeliveryTimeout bounds each outbound webhook POST
const defaultDeliveryTimeout = 10 * time.Second

// Event names emitted by this service
const (
	// EventJobCompleted is emitted when an async job reaches a terminal state
	EventJobCompleted = "completed"
	// EventInvoiceExtracted is emitted after a successful synchronous extraction
	EventInvoiceExtracted = "extracted"
)

// Dispatcher fans an event out to the event log and every registered
// subscriber. Deliveries are best-effort and fire-and-forget: a failing or
// slow subscriber never affects the emitting caller, the event log, or
// other subscribers.
type Dispatcher struct {
	registry   *Registry
	log        *EventLog
	client     *http.Client
	timeSource TimeSource
}

// NewDispatcher creates a Dispatcher with a bounded-timeout HTTP client
func NewDispatcher(registry *Registry, log *EventLog) *Dispatcher {
	return NewDispatcherWithDeps(registry, log,
		&http.Client{Timeout: defaultDeliveryTimeout},
		&defaultTimeSource{},
	)
}

// NewDispatcherWithDeps creates a Dispatcher with custom dependencies for testing
func NewDispatcherWithDeps(registry *Registry, log *EventLog, client *http.Client, timeSrc TimeSource) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		log:        log,
		client:     client,
		timeSource: timeSrc,
	}
}

// Emit records an event and starts an independent delivery to each
// subscriber. The event log write completes before Emit returns, so a read
// of the log immediately after observes the new event. Deliveries run in
// their own goroutines and are never joined.
func (d *Dispatcher) Emit(name string, data any) Event {
	event := Event{
		Event:     name,
		Timestamp: d.timeSource.Now(),
		Data:      data,
	}
	d.log.Record(event)

	for _, url := range d.registry.List() {
		go d.deliver(url, event)
	}
	return event
}

// deliver POSTs the serialized event to a single subscriber. Outcomes are
// logged for observability only; there is no retry.
func (d *Dispatcher) deliver(url string, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("Error serializing webhook event", "event", event.Event, "error", err)
		return
	}

	resp, err := d.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Warn("Webhook delivery failed", "url", url, "event", event.Event, "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		slog.Warn("Webhook delivery rejected", "url", url, "event", event.Event, "status", resp.StatusCode)
		return
	}
	slog.Info("Webhook delivered", "url", url, "event", event.Event)
}
