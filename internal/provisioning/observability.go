package provisioning

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Observer defines the structured observability surface for lifecycle
// stages.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns an Observer with additional context fields.
	WithFields(fields map[string]string) Observer
}

// Event represents a structured lifecycle event.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of lifecycle event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted.
	EventResourceDeleted EventType = "resource.deleted"

	// EventCheckPassed indicates a validation check passed.
	EventCheckPassed EventType = "check.passed"
	// EventCheckFailed indicates a validation check failed.
	EventCheckFailed EventType = "check.failed"
	// EventCheckSkipped indicates a validation check was skipped.
	EventCheckSkipped EventType = "check.skipped"

	// EventWaiting indicates a bounded poll is in progress.
	EventWaiting EventType = "waiting"
)

// LogObserver implements Observer on top of zerolog.
type LogObserver struct {
	log           zerolog.Logger
	contextFields map[string]string
}

// NewLogObserver creates an observer writing human-readable output to
// stderr.
func NewLogObserver() *LogObserver {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return &LogObserver{
		log:           zerolog.New(writer).With().Timestamp().Logger(),
		contextFields: make(map[string]string),
	}
}

// NewObserverWithLogger creates an observer around an existing logger.
func NewObserverWithLogger(log zerolog.Logger) *LogObserver {
	return &LogObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *LogObserver) Printf(format string, v ...any) {
	o.log.Info().Msgf(format, v...)
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	entry := o.log.Info()
	if event.Type == EventPhaseFailed || event.Type == EventCheckFailed {
		entry = o.log.Error()
	}

	entry = entry.Str("event", string(event.Type))
	if event.Phase != "" {
		entry = entry.Str("phase", event.Phase)
	}
	if event.Resource != "" {
		entry = entry.Str("resource", event.Resource)
	}
	for k, v := range o.contextFields {
		if _, shadowed := event.Fields[k]; !shadowed {
			entry = entry.Str(k, v)
		}
	}
	for k, v := range event.Fields {
		entry = entry.Str(k, v)
	}
	entry.Msg(event.Message)
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &LogObserver{
		log:           o.log,
		contextFields: merged,
	}
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  "creating " + resourceType,
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  resourceType + " created",
		Fields:   map[string]string{"type": resourceType, "id": resourceID},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  "deleting " + resourceType,
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  resourceType + " deleted",
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogWaiting logs the start of a bounded poll.
func LogWaiting(observer Observer, phase, what string, timeout time.Duration) {
	observer.Event(Event{
		Type:    EventWaiting,
		Phase:   phase,
		Message: "waiting for " + what,
		Fields:  map[string]string{"timeout": timeout.String()},
	})
}
