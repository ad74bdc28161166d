package riffbox

// Event types published by the library and search services.
const (
	EventCollectionCreated = "collection:created"
	EventVideoAdded        = "video:added"
	EventVideoSelected     = "video:selected"
)

// Event is a named domain event with an opaque payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventBus delivers events synchronously to a single subscriber
// implementation. Publishing never reports delivery failures.
type EventBus interface {
	Publish(e Event)
}

// EventBusFunc adapts a function to the EventBus interface.
type EventBusFunc func(e Event)

func (f EventBusFunc) Publish(e Event) { f(e) }

// DiscardBus drops every event.
type DiscardBus struct{}

func (DiscardBus) Publish(Event) {}

// CollectionCreatedPayload is the data of a collection:created event.
type CollectionCreatedPayload struct {
	CollectionID string  `json:"collection_id"`
	Title        string  `json:"title"`
	Videos       []Video `json:"videos"`
}

// VideoAddedPayload is the data of a video:added event. The video fields are
// flattened next to the collection id.
type VideoAddedPayload struct {
	CollectionID string `json:"collection_id"`
	Video
}
