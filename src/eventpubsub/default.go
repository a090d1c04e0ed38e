package eventpubsub

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

// Bus is the in-process event bus. One is built at startup and passed to
// whatever publishes or subscribes.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{
		bus: EventBus.New(),
	}
}

func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers a handler that runs inside Publish, so Publish returns
// only after every synchronous handler has finished.
func (b *Bus) Subscribe(topic string, callbackFn interface{}) error {
	if err := b.bus.Subscribe(topic, callbackFn); err != nil {
		return err
	}

	log.Debugf("Subscribed to topic %s", topic)
	return nil
}

func (b *Bus) SubscribeAsync(topic string, callbackFn interface{}) error {
	if err := b.bus.SubscribeAsync(topic, callbackFn, false); err != nil {
		return err
	}

	log.Debugf("Subscribed async to topic %s", topic)
	return nil
}

func (b *Bus) Unsubscribe(topic string, callbackFn interface{}) error {
	return b.bus.Unsubscribe(topic, callbackFn)
}

func (b *Bus) HasCallback(topic string) bool {
	return b.bus.HasCallback(topic)
}

// WaitAsync blocks until all async handlers have returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
