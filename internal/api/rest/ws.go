package rest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/app/notify"
)

// wsWriteTimeout bounds a single event write to a subscriber.
const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via the admin token header, not the origin.
		return true
	},
}

// wsStream adapts a websocket connection to notify.Stream. Writes are
// serialized because the notifier broadcasts from multiple goroutines.
type wsStream struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsStream) Send(e notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(e)
}

// handleEvents upgrades the connection and streams notifications until
// the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	notifier := s.director.Notifier()
	id := notifier.Subscribe(&wsStream{conn: conn})
	zlog.Info().Msgf("event subscriber connected: %s", id)

	defer func() {
		notifier.Unsubscribe(id)
		_ = conn.Close()
		zlog.Info().Msgf("event subscriber disconnected: %s", id)
	}()

	// Tell the client where the sequence stands so gaps after a
	// reconnect are detectable.
	hello := notify.Event{
		SequenceNo: notifier.NextSequenceNo(),
		Type:       notify.TypeSubscribed,
		At:         time.Now().UTC(),
	}
	if err := notifier.Send(id, hello); err != nil {
		zlog.Warn().Err(err).Msgf("failed to greet subscriber: %s", id)
		return
	}

	// Inbound frames carry nothing; the read loop only notices closes.
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
