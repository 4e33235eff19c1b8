// Package service implements the evaluation pipeline: resolve the patient,
// consult the result cache, fall back to the same-day store lookup, and only
// then compute, persist, and fan out fresh recommendations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"carepath/internal/patient"
	"carepath/internal/recommendation"
	"carepath/internal/recommendation/cache"
	"carepath/internal/recommendation/events"
	"carepath/internal/recommendation/metrics"
	dErrors "carepath/pkg/domain-errors"
	"carepath/pkg/platform/sentinel"
)

// Serving-path messages returned alongside non-fresh results. The fresh path
// deliberately carries no message; callers rely on that asymmetry.
const (
	MessageServedFromCache = "served from cache"
	MessageAlreadyToday    = "already has recommendations for today"
)

const defaultCacheTTL = 24 * time.Hour

// EvaluateRequest carries a patient identity plus the attributes to evaluate.
// Validation happens at the transport layer; the service trusts its input.
type EvaluateRequest struct {
	FirstName string
	LastName  string
	patient.Attributes
}

// EvaluateResult is the outcome of one evaluation. Message is set only when
// the result was served from the cache or from the same-day store.
type EvaluateResult struct {
	Message         string   `json:"message,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// Service coordinates the stores, cache, and event channel. All collaborators
// are injected; the service holds no global state.
type Service struct {
	patients  patient.Store
	recs      recommendation.Store
	cache     cache.Cache
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cacheTTL  time.Duration
	now       func() time.Time

	// group serializes evaluations per patient identity so two concurrent
	// requests for the same person cannot both miss the dedup checks and
	// persist duplicate recommendation rows. Callers arriving while an
	// identical evaluation is in flight share its result.
	group singleflight.Group
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCacheTTL overrides the 24h result cache expiration.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithClock overrides the service clock. Tests use it to pin the same-day
// window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the evaluation service.
func New(
	patients patient.Store,
	recs recommendation.Store,
	resultCache cache.Cache,
	publisher events.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		patients:  patients,
		recs:      recs,
		cache:     resultCache,
		publisher: publisher,
		logger:    logger,
		cacheTTL:  defaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs the full pipeline for one patient. Each step short-circuits
// on success:
//  1. resolve or create the patient; an attribute change rewrites the record
//     and drops the cached recommendation set
//  2. result cache lookup
//  3. same-day store lookup (no cache write-back on this path)
//  4. fresh compute: persist + publish per label, then populate the cache
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	start := s.now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(s.now().Sub(start))
	}()

	identity := req.FirstName + "\x00" + req.LastName
	result, err, _ := s.group.Do(identity, func() (any, error) {
		return s.evaluate(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*EvaluateResult), nil
}

func (s *Service) evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	p, err := s.resolvePatient(ctx, req)
	if err != nil {
		return nil, err
	}

	setKey := cache.SetKey(p.ID, p.FirstName, p.LastName)
	if labels, ok := s.cachedLabels(ctx, setKey); ok {
		s.metrics.IncrementOutcome("cache")
		return &EvaluateResult{Message: MessageServedFromCache, Recommendations: labels}, nil
	}

	from, to := recommendation.DayWindow(s.now())
	existing, err := s.recs.ListByPatientBetween(ctx, p.ID, from, to)
	if err != nil {
		s.logger.ErrorContext(ctx, "same-day lookup failed", "patient_id", p.ID, "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to evaluate patient")
	}
	if len(existing) > 0 {
		// Served from the store without repopulating the cache: the fresh
		// compute path is the only cache writer.
		labels := make([]string, 0, len(existing))
		for _, rec := range existing {
			labels = append(labels, rec.Label)
		}
		s.metrics.IncrementOutcome("store")
		return &EvaluateResult{Message: MessageAlreadyToday, Recommendations: labels}, nil
	}

	labels, err := s.freshCompute(ctx, p, setKey)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementOutcome("fresh")
	return &EvaluateResult{Recommendations: labels}, nil
}

// resolvePatient looks up the identity and reconciles stored attributes with
// the request. An attribute change is the only trigger for set-cache
// invalidation.
func (s *Service) resolvePatient(ctx context.Context, req EvaluateRequest) (*patient.Patient, error) {
	p, err := s.patients.FindByName(ctx, req.FirstName, req.LastName)
	if errors.Is(err, sentinel.ErrNotFound) {
		created := &patient.Patient{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Attributes: req.Attributes,
		}
		if err := s.patients.Create(ctx, created); err != nil {
			s.logger.ErrorContext(ctx, "patient create failed", "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to evaluate patient")
		}
		return created, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "patient lookup failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to evaluate patient")
	}

	if p.Attributes.Equal(req.Attributes) {
		return p, nil
	}

	p.Attributes = req.Attributes
	if err := s.patients.Update(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "patient update failed", "patient_id", p.ID, "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to evaluate patient")
	}

	// Best-effort: a failed delete must not block the evaluation, but it is
	// the central consistency rule, so it gets a loud log line.
	setKey := cache.SetKey(p.ID, p.FirstName, p.LastName)
	if err := s.cache.Delete(ctx, setKey); err != nil {
		s.logger.ErrorContext(ctx, "set-cache invalidation failed, entry may be stale",
			"patient_id", p.ID, "key", setKey, "error", err)
	} else {
		s.metrics.IncrementInvalidations()
	}
	return p, nil
}

// cachedLabels returns the cached recommendation set, treating backend read
// failures and corrupt payloads as misses.
func (s *Service) cachedLabels(ctx context.Context, setKey string) ([]string, bool) {
	payload, err := s.cache.Get(ctx, setKey)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "cache read failed, treating as miss", "key", setKey, "error", err)
		}
		s.metrics.RecordCacheMiss("set")
		return nil, false
	}
	var labels []string
	if err := json.Unmarshal(payload, &labels); err != nil {
		s.logger.WarnContext(ctx, "corrupt cache payload, treating as miss", "key", setKey, "error", err)
		s.metrics.RecordCacheMiss("set")
		return nil, false
	}
	s.metrics.RecordCacheHit("set")
	return labels, true
}

// freshCompute runs the rules, persists a record per label, publishes one
// event per record, and populates the set cache. Persistence failures abort;
// publish and cache-write failures do not.
func (s *Service) freshCompute(ctx context.Context, p *patient.Patient, setKey string) ([]string, error) {
	labels := recommendation.GenerateLabels(p.Attributes)

	for _, label := range labels {
		rec := &recommendation.Recommendation{
			ID:        uuid.NewString(),
			PatientID: p.ID,
			Label:     label,
			CreatedAt: s.now().UTC(),
		}
		if err := s.recs.Save(ctx, rec); err != nil {
			// No rollback of already-persisted siblings.
			s.logger.ErrorContext(ctx, "recommendation persist failed",
				"patient_id", p.ID, "label", label, "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to persist recommendations")
		}
		if err := s.publisher.Publish(ctx, events.FromRecommendation(rec)); err != nil {
			s.metrics.IncrementPublishFailures()
			s.logger.WarnContext(ctx, "event publish failed",
				"recommendation_id", rec.ID, "error", err)
		}
	}

	payload, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshal label set: %w", err)
	}
	if err := s.cache.Set(ctx, setKey, payload, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", setKey, "error", err)
	}
	return labels, nil
}

// GetByID returns one recommendation, cache-aside over the store. The record
// cache entry is keyed independently from the set entry and is never
// invalidated: records are immutable.
func (s *Service) GetByID(ctx context.Context, id string) (*recommendation.Recommendation, error) {
	recKey := cache.RecordKey(id)
	payload, err := s.cache.Get(ctx, recKey)
	if err == nil {
		var rec recommendation.Recommendation
		if err := json.Unmarshal(payload, &rec); err == nil {
			s.metrics.RecordCacheHit("record")
			return &rec, nil
		}
		s.logger.WarnContext(ctx, "corrupt cache payload, treating as miss", "key", recKey, "error", err)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "cache read failed, treating as miss", "key", recKey, "error", err)
	}
	s.metrics.RecordCacheMiss("record")

	rec, err := s.recs.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "recommendation lookup failed", "id", id, "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load recommendation")
	}

	stored, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendation: %w", err)
	}
	if err := s.cache.Set(ctx, recKey, stored, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", recKey, "error", err)
	}
	return rec, nil
}

// ListPatients backs the debug listing endpoint.
func (s *Service) ListPatients(ctx context.Context) ([]*patient.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "patient list failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list patients")
	}
	return patients, nil
}

// ListRecommendations backs the debug listing endpoint.
func (s *Service) ListRecommendations(ctx context.Context) ([]*recommendation.Recommendation, error) {
	recs, err := s.recs.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "recommendation list failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list recommendations")
	}
	return recs, nil
}
