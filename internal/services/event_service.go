package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/metrics"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

// EventStore is the persistence the event service writes through.
type EventStore interface {
	Append(ctx context.Context, event models.Event) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// Publisher receives every event after it has been stored.
type Publisher interface {
	Publish(topic string, v any)
}

// HistoryFilter narrows a history listing. Zero values mean no filtering.
type HistoryFilter struct {
	Type  models.EventType
	Limit int
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(ctx context.Context, event models.Event) (models.Event, error)
	History(ctx context.Context, filter HistoryFilter) ([]models.Event, error)
	Count(ctx context.Context) (int, error)
}

// EventService records activity events and serves the history.
type EventService struct {
	store     EventStore
	publisher Publisher
	metrics   *metrics.Metrics
}

// NewEventService creates a new EventService. publisher and m may be nil.
func NewEventService(store EventStore, publisher Publisher, m *metrics.Metrics) *EventService {
	return &EventService{store: store, publisher: publisher, metrics: m}
}

// Record appends event to the log and announces it to live subscribers.
func (s *EventService) Record(ctx context.Context, event models.Event) (models.Event, error) {
	stored, err := s.store.Append(ctx, event)
	if err != nil {
		return models.Event{}, err
	}

	log.Info().Str("event_id", stored.ID).Str("type", string(stored.Type)).Msg("Event recorded")
	if s.metrics != nil {
		s.metrics.EventsAppended.WithLabelValues(string(stored.Type)).Inc()
	}
	if s.publisher != nil {
		s.publisher.Publish(string(stored.Type), stored)
	}
	return stored, nil
}

// History returns events newest-first by timestamp. Events sharing a timestamp keep
// reverse insertion order.
func (s *EventService) History(ctx context.Context, filter HistoryFilter) ([]models.Event, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		if filter.Type != "" && events[i].Type != filter.Type {
			continue
		}
		out = append(out, events[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *EventService) Count(ctx context.Context) (int, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}
