package events

import (
	"sync"

	"riffbox/internal/riffbox"
)

// MemoryBus records published events in order. It is the in-process double
// used by tests and by HTTP handlers that collect one request's results.
type MemoryBus struct {
	mu     sync.Mutex
	events []riffbox.Event
}

var _ riffbox.EventBus = (*MemoryBus)(nil)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(e riffbox.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Events returns a copy of every recorded event.
func (b *MemoryBus) Events() []riffbox.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]riffbox.Event(nil), b.events...)
}

// OfType returns the recorded events with the given type.
func (b *MemoryBus) OfType(eventType string) []riffbox.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []riffbox.Event
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the type of every recorded event, in publish order.
func (b *MemoryBus) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.Type
	}
	return types
}

// SelectedVideos returns the payloads of recorded video:selected events.
func (b *MemoryBus) SelectedVideos() []riffbox.Video {
	var videos []riffbox.Video
	for _, e := range b.OfType(riffbox.EventVideoSelected) {
		if v, ok := e.Data.(riffbox.Video); ok {
			videos = append(videos, v)
		}
	}
	return videos
}

// Reset discards all recorded events.
func (b *MemoryBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
