package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Event is a single append-only audit record. Events are written and
// never read back by the service; they exist for the security trail.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks required fields before storage.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrEventValidation)
	}
	return nil
}

// Storage persists events. Implementations must be append-only.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// Logger records security events.
type Logger interface {
	Log(ctx context.Context, userID, action string, opts ...EventOption) error
	LogFailure(ctx context.Context, userID, action string, cause error, opts ...EventOption) error
}

// EventOption mutates an event during creation.
type EventOption func(*Event)

// WithMetadata attaches a metadata key/value to the event. Values must
// never contain secrets or code plaintext.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

type logger struct {
	storage Storage
	now     func() time.Time
}

// Option configures the logger.
type Option func(*logger)

// WithClock overrides event timestamping, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger creates an audit logger writing to storage.
func NewLogger(storage Storage, opts ...Option) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *logger) Log(ctx context.Context, userID, action string, opts ...EventOption) error {
	return l.store(ctx, Event{UserID: userID, Action: action, Result: ResultSuccess}, opts)
}

func (l *logger) LogFailure(ctx context.Context, userID, action string, cause error, opts ...EventOption) error {
	event := Event{UserID: userID, Action: action, Result: ResultFailure}
	if cause != nil {
		event.Error = cause.Error()
	}
	return l.store(ctx, event, opts)
}

func (l *logger) store(ctx context.Context, event Event, opts []EventOption) error {
	event.ID = uuid.New().String()
	event.CreatedAt = l.now()
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}
