package api

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/1broseidon/winstack/internal/agent"
)

const writeTimeout = 2 * time.Second

// handleEvents streams every listener notification as one JSON message.
// Events are dropped, not queued, for a subscriber that falls behind.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	stream := agent.NewStream(s.StreamSize)
	ctrl := s.engine.Agent()
	// Subscribe before the handshake completes so a client sees every event
	// raised after Dial returns.
	id := ctrl.Register(stream.Listener())
	defer ctrl.Unregister(id)

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	s.logger.Info("event subscriber connected", "id", id, "remote", r.RemoteAddr)
	defer s.logger.Info("event subscriber disconnected", "id", id, "dropped", stream.Dropped())
	defer c.Close(websocket.StatusInternalError, "")

	// The stream is write-only; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := c.CloseRead(r.Context())
	err = pump(ctx, c, stream.Events())
	if ctx.Err() != nil {
		c.Close(websocket.StatusNormalClosure, "")
		return
	}
	s.logger.Debug("event stream ended", "id", id, "error", err)
}

func pump(ctx context.Context, c *websocket.Conn, events <-chan agent.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-events:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, e)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
