// Package store persists the activity log as a single JSON document on disk.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

// EventStore is an append-only, insertion-ordered event log backed by one JSON file.
//
// Every append rewrites the whole document through a temp file that is renamed over
// the original, so a crash mid-write leaves the previous document intact. Appends are
// serialized by mu; List may run alongside other readers.
type EventStore struct {
	path string
	mu   sync.RWMutex

	now   func() time.Time
	newID func() string
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithClock overrides the timestamp source used for events appended without one.
func WithClock(now func() time.Time) Option {
	return func(s *EventStore) { s.now = now }
}

// WithIDGenerator overrides the event id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *EventStore) { s.newID = gen }
}

// New returns a store backed by the file at path. The file does not need to exist.
func New(path string, opts ...Option) (*EventStore, error) {
	if path == "" {
		return nil, fmt.Errorf("event store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event store directory: %w", err)
	}
	s := &EventStore{
		path:  path,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newEventID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *EventStore) Path() string { return s.path }

// Append assigns an id (and a timestamp when At is zero) to event, persists it at the
// end of the log and returns the stored copy.
func (s *EventStore) Append(ctx context.Context, event models.Event) (models.Event, error) {
	if err := ctx.Err(); err != nil {
		return models.Event{}, err
	}
	if !event.Type.Valid() {
		return models.Event{}, apperr.Invalid(fmt.Sprintf("unknown event type %q", event.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.readForAppend()
	if err != nil {
		return models.Event{}, apperr.Wrap(apperr.KindStoreUnavailable, "read event log", err)
	}

	event.ID = s.newID()
	if event.At.IsZero() {
		event.At = s.now()
	}
	event.At = event.At.UTC()
	events = append(events, event)

	if err := s.writeAll(events); err != nil {
		return models.Event{}, apperr.Wrap(apperr.KindStoreUnavailable, "write event log", err)
	}
	return event, nil
}

// List returns every stored event in insertion order. A missing or unparsable file
// yields an empty log.
func (s *EventStore) List(ctx context.Context) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.read()
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Event log unreadable, serving empty history")
		return []models.Event{}, nil
	}
	return events, nil
}

// Snapshot copies the current document into dir and returns the written file path.
func (s *EventStore) Snapshot(dir string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("snapshot: event log %s does not exist yet", s.path)
		}
		return "", fmt.Errorf("snapshot: open event log: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("events_%s.json", s.now().Format("20060102150405"))
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("snapshot: create %s: %w", dstPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("snapshot: copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("snapshot: close: %w", err)
	}
	return dstPath, nil
}

// read decodes the backing file. A missing file is an empty log.
func (s *EventStore) read() ([]models.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Event{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []models.Event{}, nil
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, &parseError{err: err}
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// readForAppend is read with recovery: an unparsable document is moved aside so the
// new event starts a fresh log instead of overwriting what could still be salvaged.
func (s *EventStore) readForAppend() ([]models.Event, error) {
	events, err := s.read()
	if err == nil {
		return events, nil
	}
	var pe *parseError
	if !errors.As(err, &pe) {
		return nil, err
	}
	aside := s.path + ".corrupt-" + strconv.FormatInt(s.now().Unix(), 10)
	if rerr := os.Rename(s.path, aside); rerr != nil {
		return nil, fmt.Errorf("move unparsable event log aside: %w", rerr)
	}
	log.Warn().Err(pe.err).Str("path", s.path).Str("moved_to", aside).Msg("Event log was unparsable, starting a new one")
	return []models.Event{}, nil
}

func (s *EventStore) writeAll(events []models.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("commit event log: %w", err)
	}
	return nil
}

type parseError struct{ err error }

func (e *parseError) Error() string { return "parse event log: " + e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

// newEventID returns a random uuid, falling back to a nanosecond timestamp when the
// random source fails.
func newEventID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}
