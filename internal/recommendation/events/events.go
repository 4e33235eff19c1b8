// Package events carries newly created recommendations onto the broadcast
// channel the notification worker listens on.
//
// Publishing is at-most-once and fire-and-forget: the channel has no delivery
// acknowledgment, no ordering across patients, and no persistence. A worker
// that is offline simply misses messages.
package events

import (
	"context"
	"time"

	"carepath/internal/recommendation"
)

// DefaultChannel is the pub/sub channel name used unless overridden by config.
const DefaultChannel = "recommendation_channel"

// Event is the wire payload published once per persisted recommendation.
type Event struct {
	PatientID        int64  `json:"patient_id"`
	RecommendationID string `json:"recommendation_id"`
	Label            string `json:"recommendation"`
	Timestamp        string `json:"timestamp"`
}

// FromRecommendation builds the wire event for a persisted record. Timestamps
// are serialized as ISO-8601 strings.
func FromRecommendation(rec *recommendation.Recommendation) Event {
	return Event{
		PatientID:        rec.PatientID,
		RecommendationID: rec.ID,
		Label:            rec.Label,
		Timestamp:        rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Publisher broadcasts events to whoever is subscribed right now. Failures
// are the caller's to log; they must never abort the surrounding operation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
