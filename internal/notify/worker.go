// Package notify consumes recommendation events from the broadcast channel
// and performs the notification side effect. It sits outside the evaluation
// pipeline: the publisher never waits for it and missed messages are not
// replayed.
package notify

import (
	"context"
	"log/slog"

	"carepath/internal/recommendation/events"
)

// Worker consumes recommendation events from a channel and dispatches
// notifications. Keeping the inbox a plain Go channel keeps background
// processing testable without a live broker.
type Worker struct {
	inbox  <-chan events.Event
	logger *slog.Logger
}

// NewWorker constructs a worker over the given inbox.
func NewWorker(inbox <-chan events.Event, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, logger: logger}
}

// Run processes events until the context is cancelled or the inbox closes.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		}
	}
}

// handle performs the side effect for one event. Currently a simulated email
// dispatch, mirroring what the production notifier will do.
func (w *Worker) handle(ctx context.Context, event events.Event) {
	w.logger.InfoContext(ctx, "processing recommendation",
		"patient_id", event.PatientID,
		"recommendation_id", event.RecommendationID,
		"recommendation", event.Label,
	)
	w.logger.InfoContext(ctx, "email sent",
		"patient_id", event.PatientID,
		"recommendation", event.Label,
	)
}
