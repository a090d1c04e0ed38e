package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/eventpubsub"
	"github.com/jiaming2012/topstepx-broker/src/eventservices"
	"github.com/jiaming2012/topstepx-broker/src/worker"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

type Syncer interface {
	Sync(ctx context.Context, onlyActive bool) (*worker.SyncResult, error)
}

// Broadcaster fans the cached account snapshot out to every connected
// websocket subscriber. Delivery is best-effort: a subscriber whose buffer
// is full misses that message.
type Broadcaster struct {
	bus      *eventpubsub.Bus
	cache    *eventservices.AccountSnapshotCache
	syncer   Syncer
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscriber
	closed      bool
}

func NewBroadcaster(bus *eventpubsub.Bus, cache *eventservices.AccountSnapshotCache, syncer Syncer) (*Broadcaster, error) {
	b := &Broadcaster{
		bus:    bus,
		cache:  cache,
		syncer: syncer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subscribers: make(map[uuid.UUID]*Subscriber),
	}

	if err := bus.Subscribe(eventpubsub.AccountsUpdated, b.handleAccountsUpdated); err != nil {
		return nil, fmt.Errorf("NewBroadcaster: failed to subscribe to %s: %w", eventpubsub.AccountsUpdated, err)
	}

	return b, nil
}

func (b *Broadcaster) handleAccountsUpdated(event *eventmodels.AccountsUpdatedEvent) {
	log.WithFields(log.Fields{
		"source": event.Source,
		"count":  event.Count,
	}).Debug("broadcasting account snapshot")

	if err := b.BroadcastSnapshot(context.Background()); err != nil {
		log.Errorf("Broadcaster.handleAccountsUpdated: %v", err)
	}
}

func (b *Broadcaster) snapshotMessage(ctx context.Context) ([]byte, error) {
	accounts, err := b.cache.Get(ctx, eventmodels.AccountSnapshot{})
	if err != nil {
		log.Warnf("Broadcaster: serving empty snapshot: %v", err)
	}

	return encode(eventmodels.AccountsUpdateEvent, accounts)
}

func encode(event eventmodels.RealtimeEventName, data interface{}) ([]byte, error) {
	msg, err := eventmodels.NewRealtimeMessage(event, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", event, err)
	}

	return json.Marshal(msg)
}

// BroadcastSnapshot sends the cached snapshot to every subscriber.
func (b *Broadcaster) BroadcastSnapshot(ctx context.Context) error {
	payload, err := b.snapshotMessage(ctx)
	if err != nil {
		return fmt.Errorf("Broadcaster.BroadcastSnapshot: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		sub.offer(payload)
	}

	return nil
}

// Refresh syncs the accounts and then broadcasts the cache contents, whether
// or not the sync succeeded.
func (b *Broadcaster) Refresh(ctx context.Context, onlyActive bool) (*worker.SyncResult, error) {
	result, err := b.syncer.Sync(ctx, onlyActive)

	event := &eventmodels.AccountsUpdatedEvent{Source: "refresh"}
	if result != nil {
		event.Count = len(result.Accounts)
	}

	b.bus.Publish(eventpubsub.AccountsUpdated, event)

	return result, err
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broadcaster) register(sub *Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	b.subscribers[sub.id] = sub
	return true
}

func (b *Broadcaster) unregister(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, found := b.subscribers[sub.id]; found {
		delete(b.subscribers, sub.id)
		close(sub.send)
	}
}

// sendTo delivers payload to a single subscriber if it is still connected.
func (b *Broadcaster) sendTo(sub *Subscriber, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, found := b.subscribers[sub.id]; found {
		sub.offer(payload)
	}
}

// Close disconnects every subscriber and refuses new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.closed = true
	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub.send)
	}
	b.mu.Unlock()

	// outside b.mu: the bus holds its own lock while running handleAccountsUpdated
	if err := b.bus.Unsubscribe(eventpubsub.AccountsUpdated, b.handleAccountsUpdated); err != nil {
		log.Debugf("Broadcaster.Close: %v", err)
	}

	log.Info("realtime broadcaster closed")
}

// ServeWS upgrades the request and serves the subscriber until it disconnects.
func (b *Broadcaster) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("Broadcaster.ServeWS: upgrade failed: %v", err)
		return
	}

	sub := newSubscriber(conn)
	if !b.register(sub) {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	logger := log.WithField("subscriber", sub.id)
	logger.Debug("subscriber connected")

	go sub.writePump()

	b.readPump(r.Context(), sub)

	b.unregister(sub)
	logger.Debug("subscriber disconnected")
}

func (b *Broadcaster) readPump(ctx context.Context, sub *Subscriber) {
	sub.conn.SetReadLimit(maxMessageSize)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.WithField("subscriber", sub.id).Debugf("read failed: %v", err)
			}
			return
		}

		var msg eventmodels.RealtimeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithField("subscriber", sub.id).Warnf("ignoring malformed message: %v", err)
			continue
		}

		b.handleMessage(ctx, sub, &msg)
	}
}

func (b *Broadcaster) handleMessage(ctx context.Context, sub *Subscriber, msg *eventmodels.RealtimeMessage) {
	logger := log.WithFields(log.Fields{
		"subscriber": sub.id,
		"event":      msg.Event,
	})

	switch msg.Event {
	case eventmodels.SubscribeAccountsEvent:
		payload, err := b.snapshotMessage(ctx)
		if err != nil {
			logger.Errorf("failed to build snapshot: %v", err)
			return
		}

		b.sendTo(sub, payload)

	case eventmodels.RefreshAccountsEvent:
		onlyActive := true
		if len(msg.Data) > 0 && string(msg.Data) != "null" {
			var req eventmodels.RefreshAccountsRequestDTO
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				logger.Warnf("ignoring malformed refresh data: %v", err)
			} else if req.OnlyActive != nil {
				onlyActive = *req.OnlyActive
			}
		}

		if _, err := b.Refresh(ctx, onlyActive); err != nil {
			logger.Warnf("account refresh failed: %v", err)

			payload, encErr := encode(eventmodels.AccountsSyncFailedEvent, eventmodels.SyncFailedDTO{Error: err.Error()})
			if encErr != nil {
				logger.Error(encErr)
				return
			}

			b.sendTo(sub, payload)
		}

	default:
		logger.Warn("ignoring unknown event")
	}
}
