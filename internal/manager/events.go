package manager

import "sync"

// Event names published by the manager.
const (
	EventServiceCreate   = "service_create"
	EventServiceDelete   = "service_delete"
	EventTrainStart      = "train_start"
	EventTrainEnd        = "train_end"
	EventPredictRejected = "predict_rejected"
	EventDrainTimeout    = "drain_timeout"
)

// Event represents a manager lifecycle event.
type Event struct {
	Name    string
	Service string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Publish must not block
// or panic.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher records events in memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Named returns the recorded events with the given name, in order.
func (p *MemoryPublisher) Named(name string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
