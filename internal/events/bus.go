package events

import (
	"riffbox/internal/riffbox"
)

// LogBus writes one log line per event.
type LogBus struct {
	logger riffbox.Logger
}

var _ riffbox.EventBus = (*LogBus)(nil)

func NewLogBus(logger riffbox.Logger) *LogBus {
	return &LogBus{logger: logger}
}

func (b *LogBus) Publish(e riffbox.Event) {
	b.logger.Debug("event published", "type", e.Type)
}

// Tee fans each event out to every bus in order.
type Tee []riffbox.EventBus

var _ riffbox.EventBus = Tee(nil)

func (t Tee) Publish(e riffbox.Event) {
	for _, b := range t {
		if b != nil {
			b.Publish(e)
		}
	}
}
