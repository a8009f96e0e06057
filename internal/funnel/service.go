package funnel

import (
	"context"
	"sync/atomic"
	"time"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/common/observability"
	"provider-funnel/internal/funnel/controller"
	"provider-funnel/internal/funnel/scoring"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/models"
	"provider-funnel/internal/providers"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service bundles what every funnel entry point needs: the answer store, the
// remote copy and the provider supply.
type Service struct {
	Store     *store.Store
	Sync      controller.Syncer
	Restore   controller.Restorer
	Providers providers.Source
	Obs       *observability.Observability
	Logger    logger.Logger

	completed atomic.Pointer[func(msg CompletionMessage)]
}

// OnCompleted sets the function called after every transition that leaves a
// funnel complete. It runs on the caller's goroutine. The hook may be set or
// replaced while funnels are served; controllers opened earlier use it too.
func (s *Service) OnCompleted(fn func(msg CompletionMessage)) {
	if fn == nil {
		s.completed.Store(nil)
		return
	}
	s.completed.Store(&fn)
}

// Open loads the controller for a session and category.
func (s *Service) Open(ctx context.Context, sessionID, userID, category string) (*controller.Controller, error) {
	c, err := controller.Load(ctx, controller.Options{
		SessionID: sessionID,
		UserID:    userID,
		Category:  category,
		Store:     s.Store,
		Sync:      s.Sync,
		Restore:   s.Restore,
		Logger:    s.logger(),
	})
	if err != nil {
		return nil, Error{Category: category}.Standardize(err)
	}
	if s.Obs != nil {
		c.Subscribe(func(snap controller.Snapshot) {
			s.Obs.RecordTransition(context.Background(), snap.Category.ID, snap.State.String())
		})
	}
	c.Subscribe(func(snap controller.Snapshot) {
		if snap.State != controller.Complete {
			return
		}
		if fn := s.completed.Load(); fn != nil {
			(*fn)(CompletionMessage{SessionID: sessionID, UserID: userID, Variables: VariablesFrom(snap)})
		}
	})
	return c, nil
}

// Submit records one answer and maps domain errors.
func (s *Service) Submit(ctx context.Context, c *controller.Controller, questionID, value string) (controller.Snapshot, error) {
	snap, err := c.Submit(ctx, questionID, value)
	if err != nil {
		return snap, Error{Category: c.Catalog().Category().ID, QuestionID: questionID, Value: value}.Standardize(err)
	}
	return snap, nil
}

// Results fetches the category's providers and ranks them against answers.
func (s *Service) Results(ctx context.Context, category string, answers models.AnswerSet) ([]models.ScoredProvider, error) {
	ctx, span := s.startSpan(ctx, "funnel.results", attribute.String("category", category))
	defer span.End()

	list, err := s.Providers.Providers(ctx, category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.NewProviderFetchFailedError(category, err)
	}

	start := time.Now()
	ranked, err := scoring.Score(category, answers, list)
	metrics.ScoringDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, Error{Category: category}.Standardize(err)
	}

	metrics.ScoredProviders.WithLabelValues(category).Observe(float64(len(ranked)))
	span.SetAttributes(attribute.Int("providers", len(list)), attribute.Int("matches", len(ranked)))
	return ranked, nil
}

// RecordJob reports a finished Zeebe job to the OpenTelemetry meter.
func (s *Service) RecordJob(ctx context.Context, taskType, status string, d time.Duration) {
	if s.Obs == nil {
		return
	}
	s.Obs.RecordJobProcessed(ctx, taskType, status)
	s.Obs.RecordJobDuration(ctx, taskType, d, status)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.Obs == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.Obs.StartSpan(ctx, name, attrs...)
}

func (s *Service) logger() logger.Logger {
	if s.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return s.Logger
}
