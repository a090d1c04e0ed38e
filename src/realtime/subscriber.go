package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Subscriber is one websocket connection. Only the writer goroutine writes
// to conn; the broadcaster closes send to stop it.
type Subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

func newSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// offer queues payload without blocking. Callers hold the broadcaster lock.
func (s *Subscriber) offer(payload []byte) {
	select {
	case s.send <- payload:
	default:
		log.WithField("subscriber", s.id).Warn("send buffer full, dropping message")
	}
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.WithField("subscriber", s.id).Debugf("write failed: %v", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
