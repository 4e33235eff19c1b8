package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/internal/recommendation"
)

func TestFromRecommendation(t *testing.T) {
	rec := &recommendation.Recommendation{
		ID:        "rec-1",
		PatientID: 42,
		Label:     recommendation.LabelPhysicalTherapy,
		CreatedAt: time.Date(2025, 6, 15, 10, 30, 0, 500000000, time.UTC),
	}

	event := FromRecommendation(rec)
	assert.Equal(t, int64(42), event.PatientID)
	assert.Equal(t, "rec-1", event.RecommendationID)
	assert.Equal(t, recommendation.LabelPhysicalTherapy, event.Label)
	assert.Equal(t, "2025-06-15T10:30:00.5Z", event.Timestamp)
}

func TestFromRecommendationNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	rec := &recommendation.Recommendation{
		ID:        "rec-2",
		PatientID: 1,
		Label:     recommendation.LabelGeneralCheckup,
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, loc),
	}

	event := FromRecommendation(rec)
	assert.Equal(t, "2025-06-15T10:00:00Z", event.Timestamp)
}

func TestEventWireFormat(t *testing.T) {
	event := Event{
		PatientID:        7,
		RecommendationID: "rec-3",
		Label:            recommendation.LabelWeightManagement,
		Timestamp:        "2025-06-15T10:00:00Z",
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"patient_id": 7,
		"recommendation_id": "rec-3",
		"recommendation": "Weight Management Program",
		"timestamp": "2025-06-15T10:00:00Z"
	}`, string(payload))
}

func TestCapturePublisher(t *testing.T) {
	ctx := context.Background()
	p := NewCapturePublisher()

	require.NoError(t, p.Publish(ctx, Event{RecommendationID: "a"}))
	require.NoError(t, p.Publish(ctx, Event{RecommendationID: "b"}))
	assert.Len(t, p.Events(), 2)

	p.FailWith(errors.New("down"))
	assert.Error(t, p.Publish(ctx, Event{RecommendationID: "c"}))
	assert.Len(t, p.Events(), 2)
}
